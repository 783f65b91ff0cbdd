package domain

import "github.com/shopspring/decimal"

// SafeParse parses a string into a decimal, returning zero for
// invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Percent returns part/whole expressed as a percentage, or zero when
// whole is zero. Callers that need to distinguish "zero" from
// "undefined" must check the denominator themselves.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}
