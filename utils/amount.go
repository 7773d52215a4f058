package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"linkpay/templates"
)

// precisionByCurrency maps a base-unit currency to the divisor that converts
// backend amounts into the display denomination (kobo -> naira, sat -> BTC).
var precisionByCurrency = map[templates.TransactionCurrency]float64{
	templates.CurrencyNGNKobo: 1e2,
	templates.CurrencyBTCSat:  1e8,
}

// ToHighestDenomination converts a base-unit amount into its display
// denomination. Unknown currencies pass through unchanged.
func ToHighestDenomination(amount int64, currency templates.TransactionCurrency) float64 {
	precision, ok := precisionByCurrency[currency]
	if !ok {
		return float64(amount)
	}
	return float64(amount) / precision
}

// CurrencySymbol returns the display symbol for a base-unit currency code,
// falling back to the code itself.
func CurrencySymbol(currency string) string {
	switch templates.TransactionCurrency(currency) {
	case templates.CurrencyNGNKobo:
		return "₦"
	case templates.CurrencyBTCSat:
		return "₿"
	case templates.CurrencyUSDCent:
		return "$"
	}
	return currency
}

// PaymentMethodName returns the human-readable name of a payment method type.
func PaymentMethodName(method templates.PaymentMethodType) string {
	switch method {
	case templates.MethodBankTransfer:
		return "Bank Transfer"
	case templates.MethodLightning:
		return "Lightning Invoice"
	}
	return string(method)
}

// FormatAmount renders an amount with its currency symbol. Fiat amounts get
// thousands separators, sub-unit currencies keep their full precision.
func FormatAmount(amount float64, currency string, symbol string) string {
	if currency == string(templates.CurrencyNGNKobo) {
		return fmt.Sprintf("%s %s", symbol, humanize.CommafWithDigits(amount, 2))
	}
	return fmt.Sprintf("%s %s", symbol, trimZeros(amount))
}

// FormatSats renders a satoshi amount with thousands separators, e.g.
// "21,000 SATS".
func FormatSats(sats int64) string {
	return humanize.Comma(sats) + " SATS"
}

func trimZeros(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 8, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
