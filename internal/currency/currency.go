// Package currency converts listing prices between currencies using a
// static table of USD reference rates. The rates are deliberately
// coarse: they exist so offers from non-USD marketplaces can be ranked
// and displayed on one axis, not for settlement.
package currency

import (
	"math"
	"strings"
)

// usdRates maps an ISO 4217 code to its USD multiplier.
var usdRates = map[string]float64{
	"USD": 1,
	"EUR": 1.08,
	"GBP": 1.27,
	"CAD": 0.74,
	"AUD": 0.66,
	"JPY": 0.0067,
	"CNY": 0.14,
	"INR": 0.012,
	"MXN": 0.058,
}

// NormalizeCode validates a currency code: trimmed, uppercased,
// exactly three letters, and present in the rate table. Returns ""
// for anything else.
func NormalizeCode(code string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if len(trimmed) != 3 {
		return ""
	}
	for _, r := range trimmed {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	if _, ok := usdRates[trimmed]; !ok {
		return ""
	}
	return trimmed
}

// ToUSD converts an amount from the given currency to USD, rounded to
// cents. Unknown or empty codes are treated as already-USD amounts;
// ok is false only when the code is recognized as a non-convertible
// value is impossible here, so ok reports whether a real conversion
// (or identity) happened versus a fallback on an unknown code.
func ToUSD(amount float64, code string) (float64, bool) {
	src := NormalizeCode(code)
	if src == "" {
		return round2(amount), false
	}
	return round2(amount * usdRates[src]), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
