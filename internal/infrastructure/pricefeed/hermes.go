package pricefeed

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/domain/gateway"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// UnitOfAccount is the currency Pyth prices are quoted in. Its price is 1
// by definition, not by fallback.
const UnitOfAccount = "USD"

// HermesClient reads the latest Pyth prices and their signed update
// payload from a Hermes endpoint.
type HermesClient struct {
	baseURL    string
	httpClient *http.Client
	network    config.NetworkConfig
	maxAge     time.Duration
	now        func() time.Time
	log        *logrus.Logger
}

func NewHermesClient(cfg config.PriceFeedConfig, network config.NetworkConfig, log *logrus.Logger) *HermesClient {
	return &HermesClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		network:    network,
		maxAge:     cfg.MaxAge,
		now:        time.Now,
		log:        log,
	}
}

type hermesResponse struct {
	Binary struct {
		Encoding string   `json:"encoding"`
		Data     []string `json:"data"`
	} `json:"binary"`
	Parsed []struct {
		ID    string `json:"id"`
		Price struct {
			Price       string `json:"price"`
			Conf        string `json:"conf"`
			Expo        int32  `json:"expo"`
			PublishTime int64  `json:"publish_time"`
		} `json:"price"`
	} `json:"parsed"`
}

// LatestPrices fetches prices for symbols. Every symbol other than the unit
// of account must have a configured feed and a fresh price, otherwise
// gateway.ErrPriceUnavailable is returned.
func (c *HermesClient) LatestPrices(ctx context.Context, symbols []string) (*gateway.PriceSnapshot, error) {
	snapshot := &gateway.PriceSnapshot{Prices: make(map[string]gateway.PriceQuote)}

	feedToSymbol := make(map[string]string)
	query := url.Values{}
	for _, raw := range symbols {
		symbol := strings.ToUpper(raw)
		if symbol == UnitOfAccount {
			snapshot.Prices[symbol] = gateway.PriceQuote{Symbol: symbol, Price: decimal.NewFromInt(1), PublishTime: c.now()}
			continue
		}
		feedID, ok := c.network.FeedID(symbol)
		if !ok {
			return nil, fmt.Errorf("%w: no feed for %s", gateway.ErrPriceUnavailable, symbol)
		}
		key := normalizeFeedID(feedID)
		if _, seen := feedToSymbol[key]; !seen {
			query.Add("ids[]", feedID)
		}
		feedToSymbol[key] = symbol
	}

	if len(feedToSymbol) == 0 {
		return snapshot, nil
	}

	body, err := c.get(ctx, "/v2/updates/price/latest?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var resp hermesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode hermes response: %w", err)
	}

	for _, data := range resp.Binary.Data {
		blob, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
		if err != nil {
			return nil, fmt.Errorf("decode price update data: %w", err)
		}
		snapshot.UpdateData = append(snapshot.UpdateData, blob)
	}

	now := c.now()
	for _, p := range resp.Parsed {
		symbol, ok := feedToSymbol[normalizeFeedID(p.ID)]
		if !ok {
			continue
		}
		mantissa, err := decimal.NewFromString(p.Price.Price)
		if err != nil {
			return nil, fmt.Errorf("parse price for %s: %w", symbol, err)
		}
		price := mantissa.Shift(p.Price.Expo)
		published := time.Unix(p.Price.PublishTime, 0)

		if !price.IsPositive() {
			c.log.Warnf("Ignoring non-positive price for %s: %s", symbol, price)
			continue
		}
		if c.maxAge > 0 && now.Sub(published) > c.maxAge {
			c.log.Warnf("Ignoring stale price for %s published at %s", symbol, published.UTC())
			continue
		}

		snapshot.Prices[symbol] = gateway.PriceQuote{
			Symbol:      symbol,
			FeedID:      "0x" + normalizeFeedID(p.ID),
			Price:       price,
			PublishTime: published,
		}
	}

	for _, symbol := range feedToSymbol {
		if _, ok := snapshot.Prices[symbol]; !ok {
			return nil, fmt.Errorf("%w: %s", gateway.ErrPriceUnavailable, symbol)
		}
	}
	if len(snapshot.UpdateData) == 0 {
		return nil, fmt.Errorf("%w: empty update payload", gateway.ErrPriceUnavailable)
	}

	return snapshot, nil
}

func (c *HermesClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hermes request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read hermes response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hermes returned %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func normalizeFeedID(id string) string {
	return strings.ToLower(strings.TrimPrefix(id, "0x"))
}
