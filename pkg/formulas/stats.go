package formulas

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// StandardDeviation returns the population standard deviation (divisor N) of values,
// rounded half-up to 4 fractional digits. Returns 0 for empty input.
func StandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return RoundHalfUp(stat.PopStdDev(values, nil), 4)
}

// Mean calculates the arithmetic mean of values, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// BandWidth returns the Bollinger BandWidth in percent for a middle band and a
// standard deviation scaled by k:
//
//	upper = middle + k*stdDev
//	lower = middle - k*stdDev
//	bandwidth = (upper - lower) / middle * 100
//
// Rounded half-up to 2 fractional digits. Returns 0 if middle or stdDev is 0.
func BandWidth(middle, stdDev, k float64) float64 {
	if middle == 0 || stdDev == 0 {
		return 0
	}
	mid := decimal.NewFromFloat(middle)
	dev := decimal.NewFromFloat(k).Mul(decimal.NewFromFloat(stdDev))
	upper := mid.Add(dev)
	lower := mid.Sub(dev)
	return upper.Sub(lower).Mul(hundred).DivRound(mid, 2).InexactFloat64()
}
