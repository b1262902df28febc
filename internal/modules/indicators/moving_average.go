// Package indicators computes moving averages and volatility bands over a
// quotation sequence. Every function takes the index of the reference quotation
// and walks from it toward older dates; insufficient history yields 0.
package indicators

import (
	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/pkg/formulas"
)

// Fractional digits of price averages
const pricePlaces = 3

// SimpleMovingAverage averages the closes of period quotations starting at ref,
// rounded half-up to 3 fractional digits.
func SimpleMovingAverage(period, ref int, seq domain.Sequence) float64 {
	window, ok := seq.Window(ref, period)
	if !ok {
		return 0
	}
	return formulas.Average(window.Closes(), period, pricePlaces)
}

// ExponentialMovingAverage seeds the EMA with the SMA at an anchor index and
// smooths toward ref with multiplier 2/(period+1).
//
// Anchor selection:
//   - at least 2*period quotations remain: ref+period
//   - exactly period quotations remain: ref (the EMA equals the SMA)
//   - otherwise: the oldest index that still supports a full-period SMA
func ExponentialMovingAverage(period, ref int, seq domain.Sequence) float64 {
	remaining := seq.Remaining(ref)
	if period <= 0 || remaining < period {
		return 0
	}

	var anchor int
	switch {
	case remaining >= 2*period:
		anchor = ref + period
	case remaining == period:
		anchor = ref
	default:
		// partial warm-up: oldest index with a full SMA window behind it
		anchor = len(seq) - period
	}

	multiplier := 2.0 / float64(period+1)
	ema := SimpleMovingAverage(period, anchor, seq)
	for i := anchor - 1; i >= ref; i-- {
		ema = multiplier*(seq[i].Close-ema) + ema
	}

	return formulas.RoundHalfUp(ema, pricePlaces)
}

// SimpleMovingAverageVolume averages the volume of days quotations starting at
// ref, rounded half-up to an integer.
func SimpleMovingAverageVolume(days, ref int, seq domain.Sequence) int64 {
	window, ok := seq.Window(ref, days)
	if !ok {
		return 0
	}
	volumes := make([]int64, len(window))
	for i, q := range window {
		volumes[i] = q.Volume
	}
	return formulas.AverageInt(volumes, days)
}
