package service_test

import (
	"context"
	"errors"
	"testing"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/mocks"
	"pulsebridge-consult/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	ethToken   = config.TokenInfo{Symbol: "ETH", Decimals: 18, Native: true}
	pyusdToken = config.TokenInfo{Symbol: "PYUSD", Address: "0xCaC524BcA292aaade2DF8A05cC58F0a65B1B3bB9", Decimals: 6}
)

func snapshot(prices map[string]string) *gateway.PriceSnapshot {
	s := &gateway.PriceSnapshot{Prices: map[string]gateway.PriceQuote{}, UpdateData: [][]byte{[]byte("vaa")}}
	for sym, p := range prices {
		s.Prices[sym] = gateway.PriceQuote{Symbol: sym, Price: decimal.RequireFromString(p)}
	}
	return s
}

func TestConvertFee(t *testing.T) {
	tests := []struct {
		name    string
		fee     string
		source  string
		target  string
		pSource string
		pTarget string
		want    string
	}{
		{"usd to eth", "50", "USD", "ETH", "1", "2000", "0.02525"},
		{"usd to pyusd", "40", "USD", "PYUSD", "1", "1", "40.4"},
		{"same currency has no buffer", "50", "PYUSD", "pyusd", "1", "1", "50"},
		{"eth to usdc", "0.01", "ETH", "USDC", "3000", "1", "30.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ConvertFee(
				decimal.RequireFromString(tt.fee), tt.source, tt.target,
				decimal.RequireFromString(tt.pSource), decimal.RequireFromString(tt.pTarget),
			)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestConvertFeeRejectsZeroPrice(t *testing.T) {
	_, err := service.ConvertFee(decimal.NewFromInt(50), "USD", "ETH", decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, gateway.ErrPriceUnavailable)
}

func TestToBaseUnitsRoundsUp(t *testing.T) {
	assert.Equal(t, "25250000000000000", service.ToBaseUnits(decimal.RequireFromString("0.02525"), 18).String())
	assert.Equal(t, "1000001", service.ToBaseUnits(decimal.RequireFromString("1.0000001"), 6).String())
	assert.Equal(t, "1000000", service.ToBaseUnits(decimal.RequireFromString("1"), 6).String())
}

func TestFeeConverter_Quote(t *testing.T) {
	t.Run("quotes eth with update data", func(t *testing.T) {
		feed := new(mocks.MockPriceFeed)
		feed.On("LatestPrices", mock.Anything, []string{"USD", "ETH"}).
			Return(snapshot(map[string]string{"USD": "1", "ETH": "2000"}), nil)

		q, err := service.NewFeeConverter(feed).Quote(context.Background(), decimal.NewFromInt(50), "usd", ethToken)
		require.NoError(t, err)

		assert.Equal(t, "25250000000000000", q.BaseUnits.String())
		assert.Equal(t, "0.02525", q.Amount.String())
		assert.Equal(t, [][]byte{[]byte("vaa")}, q.UpdateData)
		feed.AssertExpectations(t)
	})

	t.Run("missing target price is an error", func(t *testing.T) {
		feed := new(mocks.MockPriceFeed)
		feed.On("LatestPrices", mock.Anything, []string{"USD", "PYUSD"}).
			Return(snapshot(map[string]string{"USD": "1"}), nil)

		_, err := service.NewFeeConverter(feed).Quote(context.Background(), decimal.NewFromInt(50), "USD", pyusdToken)
		assert.ErrorIs(t, err, gateway.ErrPriceUnavailable)
	})

	t.Run("feed error propagates", func(t *testing.T) {
		feed := new(mocks.MockPriceFeed)
		feed.On("LatestPrices", mock.Anything, mock.Anything).Return(nil, errors.New("hermes down"))

		_, err := service.NewFeeConverter(feed).Quote(context.Background(), decimal.NewFromInt(50), "USD", ethToken)
		assert.EqualError(t, err, "hermes down")
	})
}

func TestFromBaseUnitsInvertsToBaseUnits(t *testing.T) {
	amount := decimal.RequireFromString("50.5")
	units := service.ToBaseUnits(amount, pyusdToken.Decimals)

	assert.Equal(t, "50500000", units.String())
	assert.True(t, amount.Equal(service.FromBaseUnits(units, pyusdToken.Decimals)))
	assert.True(t, service.FromBaseUnits(nil, 18).IsZero())
}
