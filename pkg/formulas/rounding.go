package formulas

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RoundHalfUp rounds value to the given number of fractional digits, ties away from zero.
//
// The float is first converted to its shortest decimal representation, so
// RoundHalfUp(2.675, 2) is 2.68 even though the binary value sits slightly below.
func RoundHalfUp(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// RoundHalfUpInt rounds value to the nearest integer, ties away from zero.
func RoundHalfUpInt(value float64) int64 {
	return decimal.NewFromFloat(value).Round(0).IntPart()
}

// Average divides the exact decimal sum of values by n and rounds half-up.
// Returns 0 when n is not positive.
func Average(values []float64, n int, places int32) float64 {
	if n <= 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.DivRound(decimal.NewFromInt(int64(n)), places).InexactFloat64()
}

// AverageInt divides the sum of integer values by n, rounded half-up to an integer.
func AverageInt(values []int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromInt(v))
	}
	return sum.DivRound(decimal.NewFromInt(int64(n)), 0).IntPart()
}

// Percent returns round_half_up(100 * part / whole), or 0 if whole is 0.
func Percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(part)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(whole)), 0).
		IntPart())
}

// PercentChange returns (current - base) / base * 100 rounded half-up.
// Returns 0 when base is 0.
func PercentChange(current, base float64, places int32) float64 {
	if base == 0 {
		return 0
	}
	c := decimal.NewFromFloat(current)
	b := decimal.NewFromFloat(base)
	return c.Sub(b).Mul(hundred).DivRound(b, places).InexactFloat64()
}
