package provider

import "testing"

func TestSplitSymbol(t *testing.T) {
	tests := []struct {
		input string
		base  string
		quote string
	}{
		{"BTC-USD", "BTC", "USD"},
		{"ETH-USD", "ETH", "USD"},
		{"btc/usd", "BTC", "USD"},
		{"BTCUSDT", "BTC", "USDT"},
		{"BTC", "BTC", "USD"},
		{"eth", "ETH", "USD"},
		{"SOL-EUR", "SOL", "EUR"},
	}

	for _, tt := range tests {
		base, quote := SplitSymbol(tt.input)
		if base != tt.base || quote != tt.quote {
			t.Errorf("SplitSymbol(%q) = %q, %q, want %q, %q", tt.input, base, quote, tt.base, tt.quote)
		}
	}
}

func TestToBinance(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"BTC-USD", "BTCUSDT"},
		{"ETH-USD", "ETHUSDT"},
		{"BTC-USDT", "BTCUSDT"},
		{"SOL-EUR", "SOLEUR"},
	}

	for _, tt := range tests {
		if got := ToBinance(tt.input); got != tt.want {
			t.Errorf("ToBinance(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToCoinGeckoID(t *testing.T) {
	if id := ToCoinGeckoID("BTC-USD"); id != "bitcoin" {
		t.Errorf("ToCoinGeckoID(BTC-USD) = %q, want bitcoin", id)
	}
	if id := ToCoinGeckoID("ETH-USD"); id != "ethereum" {
		t.Errorf("ToCoinGeckoID(ETH-USD) = %q, want ethereum", id)
	}
	if id := ToCoinGeckoID("UNKNOWN-USD"); id != "" {
		t.Errorf("unknown base should map to empty id, got %q", id)
	}
}

func TestValidateSymbol(t *testing.T) {
	valid := []string{"BTC-USD", "ETH-USD", "BTCUSDT", "btc/usd"}
	for _, s := range valid {
		if err := ValidateSymbol(s); err != nil {
			t.Errorf("ValidateSymbol(%q) = %v, want nil", s, err)
		}
	}

	invalid := []string{"", "B T C", "BTC$USD", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}
	for _, s := range invalid {
		if err := ValidateSymbol(s); err == nil {
			t.Errorf("ValidateSymbol(%q) should fail", s)
		}
	}
}
