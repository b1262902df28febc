package ranking

import (
	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/aristath/trendwatch/pkg/formulas"
	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

// Trading-day lengths of the performance periods and lookbacks
const (
	ThreeMonths  = 63
	SixMonths    = 126
	NineMonths   = 189
	TwelveMonths = 252

	FiftyTwoWeeks    = 252
	UpDownVolumeDays = 50
	percentSumPlaces = 2
	inputValuePlaces = 2
)

// chronological returns n values of field starting at ref, oldest first
func chronological(seq domain.Sequence, ref, n int, field func(*domain.Quotation) float64) []float64 {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[n-1-i] = field(seq[ref+i])
	}
	return values
}

func closeOf(q *domain.Quotation) float64 { return q.Close }
func highOf(q *domain.Quotation) float64  { return q.High }

// Performance is the percent rate of change of the close at ref against the
// close period trading days earlier, rounded half-up to 2 digits.
// Returns 0 when the older close is not available.
func Performance(period, ref int, seq domain.Sequence) float64 {
	if period <= 0 || seq.Remaining(ref) < period+1 {
		return 0
	}
	closes := chronological(seq, ref, period+1, closeOf)
	roc := talib.Roc(closes, period)
	return formulas.RoundHalfUp(roc[len(roc)-1], inputValuePlaces)
}

// PercentSum weights recent performance double:
// 2*perf(3M) + perf(6M) + perf(9M) + perf(12M).
func PercentSum(ref int, seq domain.Sequence) float64 {
	sum := decimal.NewFromFloat(Performance(ThreeMonths, ref, seq)).Mul(decimal.NewFromInt(2)).
		Add(decimal.NewFromFloat(Performance(SixMonths, ref, seq))).
		Add(decimal.NewFromFloat(Performance(NineMonths, ref, seq))).
		Add(decimal.NewFromFloat(Performance(TwelveMonths, ref, seq)))
	return sum.Round(percentSumPlaces).InexactFloat64()
}

// DistanceTo52WeekHigh is the percent distance of the close at ref below the
// highest high of up to 52 weeks ending at ref. 0 means the close is at the high.
func DistanceTo52WeekHigh(ref int, seq domain.Sequence) float64 {
	n := seq.Remaining(ref)
	if n == 0 {
		return 0
	}
	if n > FiftyTwoWeeks {
		n = FiftyTwoWeeks
	}

	highs := chronological(seq, ref, n, highOf)
	high := highs[0]
	if n >= 2 {
		highest := talib.Max(highs, n)
		high = highest[len(highest)-1]
	}

	return formulas.PercentChange(seq[ref].Close, high, inputValuePlaces)
}

// UpDownVolumeRatio divides the volume of up days by the volume of down days
// over the 50 trading days ending at ref, rounded half-up to 2 digits.
// Returns 0 without a full window (including the day before it) or without down volume.
func UpDownVolumeRatio(ref int, seq domain.Sequence) float64 {
	if seq.Remaining(ref) < UpDownVolumeDays+1 {
		return 0
	}

	var up, down int64
	for i := ref; i < ref+UpDownVolumeDays; i++ {
		current, previous := seq[i], seq[i+1]
		switch {
		case current.Close > previous.Close:
			up += current.Volume
		case current.Close < previous.Close:
			down += current.Volume
		}
	}
	if down == 0 {
		return 0
	}

	return decimal.NewFromInt(up).DivRound(decimal.NewFromInt(down), inputValuePlaces).InexactFloat64()
}

// Inputs computes the raw ranking criteria of the quotation at ref.
// Rank fields are left at 0 until the universe is ranked.
func Inputs(ref int, seq domain.Sequence) snapshots.RelativeStrength {
	return snapshots.RelativeStrength{
		RSPercentSum:         PercentSum(ref, seq),
		DistanceTo52WeekHigh: DistanceTo52WeekHigh(ref, seq),
		UpDownVolumeRatio:    UpDownVolumeRatio(ref, seq),
	}
}

// UpdateInputs stores the raw criteria of the newest quotation of seq and
// returns that quotation, or nil for an empty sequence.
func (r *Ranker) UpdateInputs(seq domain.Sequence) *domain.Quotation {
	latest := seq.Latest()
	if latest == nil {
		return nil
	}
	r.table.SetRelativeStrength(latest.ID, Inputs(0, seq))
	return latest
}
