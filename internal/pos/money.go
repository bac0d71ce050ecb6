package pos

import (
	"fmt"
	"math"
)

// FormatMoney renders a monetary value as a currency-code prefix plus a
// fixed two-decimal amount, e.g. "GHS 10.00". NaN and infinite inputs
// coerce to 0.00 so a malformed record cannot corrupt a receipt.
func FormatMoney(currency string, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return fmt.Sprintf("%s %.2f", currency, v)
}

// RoundCents rounds a monetary value to cent precision.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// paymentDisplay maps the legacy lowercase payment codes to their
// printed form. It is a closed mapping: anything not listed passes
// through as its raw string.
var paymentDisplay = map[string]string{
	"cash":         "Cash",
	"mobile_money": "Mobile Money",
	"credit":       "Credit",
}

// PaymentDisplay returns the human-readable form of a payment method.
func PaymentDisplay(method string) string {
	if display, ok := paymentDisplay[method]; ok {
		return display
	}
	return method
}
