package types

import (
	"encoding/json"
	"testing"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"USD", USD(2999), 2999, "usd", "$29.99"},
		{"EUR", EUR(4900), 4900, "eur", "€49.00"},
		{"MXN", MXN(19900), 19900, "mxn", "MX$199.00"},
		{"Zero USD", Zero("USD"), 0, "usd", "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return USD(100).Add(USD(200)) }, USD(300)},
		{"Subtract", func() Money { return USD(500).Subtract(USD(200)) }, USD(300)},
		{"Multiply", func() Money { return USD(100).Multiply(3) }, USD(300)},
		{"Sum", func() Money { return Sum(USD(100), USD(200), USD(300)) }, USD(600)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op()
			if !got.Equal(tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMoneyPercentOff(t *testing.T) {
	tests := []struct {
		name     string
		base     Money
		pct      int
		expected Money
	}{
		{"no discount", USD(1000), 0, USD(1000)},
		{"full discount", USD(1000), 100, USD(0)},
		{"twenty percent of ten dollars", USD(1000), 20, USD(800)},
		{"rounds half up", USD(999), 50, USD(500)}, // 499.5 → 500
		{"fifteen percent", USD(2999), 15, USD(2549)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.PercentOff(tt.pct)
			if !got.Equal(tt.expected) {
				t.Errorf("PercentOff(%d): got %v, want %v", tt.pct, got, tt.expected)
			}
		})
	}
}

func TestMoneyPercentOffOutOfRange(t *testing.T) {
	for _, pct := range []int{-1, 101} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("PercentOff(%d): expected panic", pct)
				}
			}()
			USD(1000).PercentOff(pct)
		}()
	}
}

func TestMoneyCurrencyMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on currency mismatch")
		}
	}()
	USD(100).Add(EUR(100))
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(USD(2999))
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Amount != 2999 || decoded.Currency != "usd" || decoded.Display != "$29.99" {
		t.Errorf("unexpected JSON round trip: %+v", decoded)
	}
}
