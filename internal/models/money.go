package models

import "github.com/shopspring/decimal"

// SplitTolerance is the largest allowed difference between an expense amount
// and the sum of its splits when the expense is recorded.
var SplitTolerance = decimal.New(1, -2)

// FormatAmount renders an amount with two decimal places.
// Stored and computed amounts keep full precision; this is the only rounding.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatSigned renders a balance the way summaries display it:
// "+₹60.00" when owed, "-₹30.00" when owing and "₹0.00" when settled up.
func FormatSigned(symbol string, d decimal.Decimal) string {
	rounded := d.Round(2)
	switch {
	case rounded.IsPositive():
		return "+" + symbol + rounded.StringFixed(2)
	case rounded.IsNegative():
		return "-" + symbol + rounded.Abs().StringFixed(2)
	default:
		return symbol + "0.00"
	}
}
