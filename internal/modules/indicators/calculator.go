package indicators

import (
	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

// Snapshot computes the moving-average snapshot of the quotation at ref
func Snapshot(ref int, seq domain.Sequence) snapshots.MovingAverage {
	return snapshots.MovingAverage{
		SMA10:       SimpleMovingAverage(10, ref, seq),
		SMA50:       SimpleMovingAverage(50, ref, seq),
		SMA200:      SimpleMovingAverage(200, ref, seq),
		EMA21:       ExponentialMovingAverage(21, ref, seq),
		SMA30Volume: SimpleMovingAverageVolume(30, ref, seq),
	}
}

// Calculator fills the moving-average side-table for instrument sequences
type Calculator struct {
	table *snapshots.Table
	log   zerolog.Logger
}

// NewCalculator creates a calculator writing into table
func NewCalculator(table *snapshots.Table, log zerolog.Logger) *Calculator {
	return &Calculator{
		table: table,
		log:   log.With().Str("component", "indicators").Logger(),
	}
}

// UpdateSnapshots computes the snapshot of the newest depth quotations of seq
// (all quotations when depth <= 0) and returns how many were written.
// Recomputing an unchanged sequence writes identical snapshots.
func (c *Calculator) UpdateSnapshots(seq domain.Sequence, depth int) int {
	n := len(seq)
	if depth > 0 && depth < n {
		n = depth
	}

	for i := 0; i < n; i++ {
		c.table.SetMovingAverage(seq[i].ID, Snapshot(i, seq))
	}

	if n > 0 {
		c.log.Debug().
			Int64("instrument_id", seq[0].InstrumentID).
			Int("quotations", n).
			Msg("Moving average snapshots updated")
	}

	return n
}
