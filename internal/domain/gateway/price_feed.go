package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrPriceUnavailable is returned when a requested symbol has no usable price.
var ErrPriceUnavailable = errors.New("price unavailable")

// PriceQuote is one oracle price, expressed in USD.
type PriceQuote struct {
	Symbol      string
	FeedID      string
	Price       decimal.Decimal
	PublishTime time.Time
}

// PriceSnapshot is a set of prices together with the opaque update payload
// the escrow contract consumes to verify them on-chain.
type PriceSnapshot struct {
	Prices     map[string]PriceQuote
	UpdateData [][]byte
}

// Price looks up a symbol's price. ok is false when the symbol is missing.
func (s *PriceSnapshot) Price(symbol string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	q, ok := s.Prices[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, false
	}
	return q.Price, true
}

// PriceFeed fetches current prices for currency symbols.
type PriceFeed interface {
	LatestPrices(ctx context.Context, symbols []string) (*PriceSnapshot, error)
}
