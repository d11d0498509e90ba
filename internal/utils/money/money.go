// Package money normalizes monetary amounts to a fixed precision so that
// repeated credit/debit cycles cannot accumulate floating-point drift.
package money

import "github.com/shopspring/decimal"

// Places is the fixed number of decimal places every persisted amount carries.
const Places = 4

// Normalize rounds d to Places decimal places, half away from zero.
func Normalize(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// FromFloat converts a float input to a normalized amount.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(Places)
}

// FromString parses and normalizes an amount. Non-numeric or empty input
// normalizes to zero.
func FromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(Places)
}

// IsPositive reports whether the normalized amount is strictly greater
// than zero.
func IsPositive(d decimal.Decimal) bool {
	return Normalize(d).IsPositive()
}
