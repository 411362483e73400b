package provider

import (
	"fmt"
	"regexp"
	"strings"
)

// Quote currencies recognized when splitting a pair, in detection order.
var quoteCurrencies = []string{"USDT", "USDC", "USD", "EUR", "KRW", "BTC", "ETH"}

var validPair = regexp.MustCompile(`^[A-Za-z0-9]{2,20}$`)

// coinIDs maps base currencies to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
}

// ValidateSymbol checks a dashed pair such as "BTC-USD".
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 30 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}

	s := strings.ReplaceAll(symbol, "-", "")
	s = strings.ReplaceAll(s, "/", "")
	if !validPair.MatchString(s) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// SplitSymbol extracts base and quote from a pair in any common
// format: "BTC-USD", "BTC/USD", "BTCUSD", "btc".
// A bare base gets "USD" as its quote.
func SplitSymbol(symbol string) (base, quote string) {
	s := strings.ToUpper(symbol)
	if i := strings.IndexAny(s, "-/"); i > 0 {
		return s[:i], strings.Map(alnumOnly, s[i+1:])
	}

	for _, q := range quoteCurrencies {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q
		}
	}
	return s, "USD"
}

// ToBinance converts a pair to Binance kline format: "BTC-USD" ->
// "BTCUSDT" (Binance quotes spot pairs in USDT, not USD).
func ToBinance(symbol string) string {
	base, quote := SplitSymbol(symbol)
	if quote == "USD" {
		quote = "USDT"
	}
	return base + quote
}

// ToCoinGeckoID maps a pair's base to its CoinGecko coin id, or ""
// when the base is unknown.
func ToCoinGeckoID(symbol string) string {
	base, _ := SplitSymbol(symbol)
	return coinIDs[base]
}

func alnumOnly(r rune) rune {
	if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
		return r
	}
	return -1
}
