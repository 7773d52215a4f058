package utils

import (
	"testing"

	"linkpay/templates"
)

func TestToHighestDenomination(t *testing.T) {
	cases := []struct {
		name     string
		amount   int64
		currency templates.TransactionCurrency
		want     float64
	}{
		{"kobo to naira", 150000, templates.CurrencyNGNKobo, 1500},
		{"kobo with subunits", 123456, templates.CurrencyNGNKobo, 1234.56},
		{"sats to btc", 100000000, templates.CurrencyBTCSat, 1},
		{"small sats", 21000, templates.CurrencyBTCSat, 0.00021},
		{"unknown currency passes through", 500, templates.TransactionCurrency("EURCENT"), 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToHighestDenomination(tc.amount, tc.currency); got != tc.want {
				t.Errorf("ToHighestDenomination(%d, %s) = %v, want %v", tc.amount, tc.currency, got, tc.want)
			}
		})
	}
}

func TestCurrencySymbol(t *testing.T) {
	if got := CurrencySymbol("NGNKOBO"); got != "₦" {
		t.Errorf("NGNKOBO symbol = %q", got)
	}
	if got := CurrencySymbol("BTCSAT"); got != "₿" {
		t.Errorf("BTCSAT symbol = %q", got)
	}
	if got := CurrencySymbol("USDCENT"); got != "$" {
		t.Errorf("USDCENT symbol = %q", got)
	}
	if got := CurrencySymbol("XYZ"); got != "XYZ" {
		t.Errorf("unknown currency should fall back to its code, got %q", got)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(1234567.89, "NGNKOBO", "₦"); got != "₦ 1,234,567.89" {
		t.Errorf("naira formatting = %q", got)
	}
	if got := FormatAmount(0.0001, "BTC", "₿"); got != "₿ 0.0001" {
		t.Errorf("btc formatting should trim trailing zeros, got %q", got)
	}
	if got := FormatAmount(2, "BTC", "₿"); got != "₿ 2" {
		t.Errorf("whole btc formatting = %q", got)
	}
}

func TestFormatSats(t *testing.T) {
	if got := FormatSats(21000); got != "21,000 SATS" {
		t.Errorf("FormatSats(21000) = %q", got)
	}
	if got := FormatSats(5); got != "5 SATS" {
		t.Errorf("FormatSats(5) = %q", got)
	}
}

func TestPaymentMethodName(t *testing.T) {
	if got := PaymentMethodName(templates.MethodBankTransfer); got != "Bank Transfer" {
		t.Errorf("bank transfer name = %q", got)
	}
	if got := PaymentMethodName(templates.MethodLightning); got != "Lightning Invoice" {
		t.Errorf("lightning name = %q", got)
	}
}
