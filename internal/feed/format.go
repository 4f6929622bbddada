package feed

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"GBP": "£",
	"EUR": "€",
}

// currencySymbol returns the symbol for an ISO code; unknown codes are
// rendered as "<code> " and an empty code defaults to naira.
func currencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "₦"
	}
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	return code + " "
}

// money formats an amount with thousands separators: ₦1,200,000 or ₦1,250.5.
func money(symbol string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	if amount.Equal(amount.Truncate(0)) {
		return sign + symbol + humanize.Comma(amount.IntPart())
	}
	return sign + symbol + humanize.CommafWithDigits(amount.InexactFloat64(), 2)
}

// percent formats a rate like 15 or 12.5, without the % sign.
func percent(rate decimal.Decimal) string {
	return rate.Round(2).String()
}
