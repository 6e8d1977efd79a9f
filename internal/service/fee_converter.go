package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/domain/gateway"

	"github.com/shopspring/decimal"
)

// conversionBuffer covers price movement between quote and execution.
var conversionBuffer = decimal.RequireFromString("1.01")

// conversionPrecision is the number of decimal places kept by the division
// before the buffer is applied.
const conversionPrecision = 24

// FeeQuote is a fee converted into a settlement token.
type FeeQuote struct {
	Fee            decimal.Decimal
	SourceCurrency string
	Token          config.TokenInfo
	PriceSource    decimal.Decimal
	PriceTarget    decimal.Decimal
	Amount         decimal.Decimal
	BaseUnits      *big.Int
	UpdateData     [][]byte
	QuotedAt       time.Time
}

type FeeConverter interface {
	Quote(ctx context.Context, fee decimal.Decimal, sourceCurrency string, token config.TokenInfo) (*FeeQuote, error)
}

type feeConverter struct {
	feed gateway.PriceFeed
	now  func() time.Time
}

func NewFeeConverter(feed gateway.PriceFeed) FeeConverter {
	return &feeConverter{feed: feed, now: time.Now}
}

// Quote prices fee, denominated in sourceCurrency, in token. Both prices
// must be present in the snapshot; a missing price is never treated as 1.
func (c *feeConverter) Quote(ctx context.Context, fee decimal.Decimal, sourceCurrency string, token config.TokenInfo) (*FeeQuote, error) {
	source := strings.ToUpper(sourceCurrency)
	target := strings.ToUpper(token.Symbol)

	symbols := []string{source}
	if target != source {
		symbols = append(symbols, target)
	}

	snapshot, err := c.feed.LatestPrices(ctx, symbols)
	if err != nil {
		return nil, err
	}

	pSource, ok := snapshot.Price(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", gateway.ErrPriceUnavailable, source)
	}
	pTarget, ok := snapshot.Price(target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", gateway.ErrPriceUnavailable, target)
	}

	amount, err := ConvertFee(fee, source, target, pSource, pTarget)
	if err != nil {
		return nil, err
	}

	return &FeeQuote{
		Fee:            fee,
		SourceCurrency: source,
		Token:          token,
		PriceSource:    pSource,
		PriceTarget:    pTarget,
		Amount:         amount,
		BaseUnits:      ToBaseUnits(amount, token.Decimals),
		UpdateData:     snapshot.UpdateData,
		QuotedAt:       c.now(),
	}, nil
}

// ConvertFee returns fee × pSource / pTarget × 1.01 when the currencies
// differ and fee unchanged when they match.
func ConvertFee(fee decimal.Decimal, source, target string, pSource, pTarget decimal.Decimal) (decimal.Decimal, error) {
	if strings.EqualFold(source, target) {
		return fee, nil
	}
	if !pSource.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", gateway.ErrPriceUnavailable, source)
	}
	if !pTarget.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", gateway.ErrPriceUnavailable, target)
	}
	return fee.Mul(pSource).DivRound(pTarget, conversionPrecision).Mul(conversionBuffer), nil
}

// ToBaseUnits scales amount to the token's smallest unit, rounding up so the
// payment never falls short of the quote.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Ceil().BigInt()
}

// FromBaseUnits is the inverse of ToBaseUnits.
func FromBaseUnits(units *big.Int, decimals uint8) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -int32(decimals))
}
