package config

import "strings"

// TokenInfo describes a settlement currency on a network. Native marks the
// chain's gas currency, which is paid as transaction value and needs no
// allowance.
type TokenInfo struct {
	Symbol      string
	Address     string
	Decimals    uint8
	PriceFeedID string
	Native      bool
}

// NetworkConfig is the static per-chain deployment map.
type NetworkConfig struct {
	ChainID            int64
	Name               string
	DoctorRegistry     string
	ConsultationEscrow string
	Tokens             map[string]TokenInfo
}

// Pyth price feed ids, USD quoted.
const (
	FeedETHUSD   = "0xff61491a931112ddf1bd8147cd1b641375f79f5825126d665480874634fd0ace"
	FeedPYUSDUSD = "0xc1da1b73d7f01e7ddd54b3766cf7fcd644395ad14f70aa706ec5384c59e76692"
	FeedUSDCUSD  = "0xeaa020c61cc479712813461ce153894a96a6c00b21ed0cfc2798d1f9a9e9c94a"
)

var networks = map[int64]NetworkConfig{
	11155111: {
		ChainID: 11155111,
		Name:    "sepolia",
		Tokens: map[string]TokenInfo{
			"ETH":   {Symbol: "ETH", Decimals: 18, PriceFeedID: FeedETHUSD, Native: true},
			"PYUSD": {Symbol: "PYUSD", Address: "0xCaC524BcA292aaade2DF8A05cC58F0a65B1B3bB9", Decimals: 6, PriceFeedID: FeedPYUSDUSD},
			"USDC":  {Symbol: "USDC", Address: "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", Decimals: 6, PriceFeedID: FeedUSDCUSD},
		},
	},
	31337: {
		ChainID: 31337,
		Name:    "localhost",
		Tokens: map[string]TokenInfo{
			"ETH":   {Symbol: "ETH", Decimals: 18, PriceFeedID: FeedETHUSD, Native: true},
			"PYUSD": {Symbol: "PYUSD", Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3", Decimals: 6, PriceFeedID: FeedPYUSDUSD},
		},
	},
}

// Network returns a copy of the deployment map for chainID.
func Network(chainID int64) (NetworkConfig, bool) {
	n, ok := networks[chainID]
	if !ok {
		return NetworkConfig{}, false
	}
	tokens := make(map[string]TokenInfo, len(n.Tokens))
	for k, v := range n.Tokens {
		tokens[k] = v
	}
	n.Tokens = tokens
	return n, true
}

// Token looks up a settlement token by symbol, case-insensitively.
func (n NetworkConfig) Token(symbol string) (TokenInfo, bool) {
	t, ok := n.Tokens[strings.ToUpper(symbol)]
	return t, ok
}

// FeedID returns the price feed for a currency symbol, which may be a
// settlement token or a quote-only currency.
func (n NetworkConfig) FeedID(symbol string) (string, bool) {
	t, ok := n.Token(symbol)
	if !ok || t.PriceFeedID == "" {
		return "", false
	}
	return t.PriceFeedID, true
}
