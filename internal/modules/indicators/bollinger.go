package indicators

import (
	"sort"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/pkg/formulas"
	"github.com/shopspring/decimal"
)

// BollingerBandWidth returns (upper-lower)/middle*100 for the bands of period
// closes ending at ref, with upper/lower at k standard deviations.
// Returns 0 when the standard deviation or the middle band is 0.
func BollingerBandWidth(period int, k float64, ref int, seq domain.Sequence) float64 {
	window, ok := seq.Window(ref, period)
	if !ok {
		return 0
	}
	middle := SimpleMovingAverage(period, ref, seq)
	stdDev := formulas.StandardDeviation(window.Closes())
	return formulas.BandWidth(middle, stdDev, k)
}

// BollingerBandWidthThreshold collects the non-zero BandWidth of every
// quotation from ref to the oldest one with a full window, sorts them
// descending and returns the value at index floor(N - N*percent/100) - 1,
// clamped into the valid range.
func BollingerBandWidthThreshold(period int, k, percent float64, ref int, seq domain.Sequence) float64 {
	if period <= 0 || seq.Remaining(ref) < period {
		return 0
	}

	var widths []float64
	for i := ref; seq.Remaining(i) >= period; i++ {
		if bw := BollingerBandWidth(period, k, i, seq); bw != 0 {
			widths = append(widths, bw)
		}
	}
	if len(widths) == 0 {
		return 0
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(widths)))

	n := decimal.NewFromInt(int64(len(widths)))
	idx := int(n.Sub(n.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100))).Floor().IntPart()) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(widths)-1 {
		idx = len(widths) - 1
	}

	return widths[idx]
}
