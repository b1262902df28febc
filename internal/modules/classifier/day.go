package classifier

import (
	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
)

// Day is the evaluation context of one quotation: its position in the
// instrument's sequence and its moving-average snapshot.
type Day struct {
	Sequence      domain.Sequence
	Index         int
	MovingAverage snapshots.MovingAverage
}

// NewDay builds the context of the quotation at index, reading its snapshot
// from table. A missing snapshot leaves all averages at 0.
func NewDay(seq domain.Sequence, index int, table *snapshots.Table) Day {
	day := Day{Sequence: seq, Index: index}
	if current := seq.At(index); current != nil && table != nil {
		day.MovingAverage, _ = table.MovingAverage(current.ID)
	}
	return day
}

// Current is the evaluated quotation
func (d Day) Current() *domain.Quotation {
	return d.Sequence.At(d.Index)
}

// Previous is the trading day before Current, or nil
func (d Day) Previous() *domain.Quotation {
	return d.Sequence.Previous(d.Index)
}
