package domain

import "github.com/shopspring/decimal"

// Money is handled in integer minor units everywhere inside the core; decimal
// amounts exist only at the interface boundary.

var hundred = decimal.NewFromInt(100)

// CentsFromDecimal converts a decimal currency amount to minor units.
// Truncates toward zero: sub-cent fractions are dropped, not rounded, so
// callers must reject amounts with more than two fractional digits upstream.
func CentsFromDecimal(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).IntPart()
}

// CentsToDecimal converts minor units back to a decimal currency amount.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}
