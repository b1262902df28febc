// Package ranking converts a cross-sectional ordering of the universe's latest
// quotations into 0-100 relative-strength ranks.
package ranking

import (
	"sort"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/aristath/trendwatch/pkg/formulas"
	"github.com/rs/zerolog"
)

// Rank sorts a copy of items descending by key and hands every item its rank
// round_half_up((N-i)/N*100), where i is the sorted position. Items with equal
// keys keep their input order. The input slice is never reordered.
func Rank[T any](items []T, key func(T) float64, write func(item T, rank int)) {
	n := len(items)
	if n == 0 {
		return
	}

	sorted := make([]T, n)
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})

	for i, item := range sorted {
		write(item, formulas.Percent(n-i, n))
	}
}

// Criterion selects the value a ranking sorts by and the rank field it fills
type Criterion struct {
	Name   string
	Key    func(snapshots.RelativeStrength) float64
	Assign func(rs *snapshots.RelativeStrength, rank int)
}

var (
	// ByPercentSum ranks by weighted 3/6/9/12-month performance
	ByPercentSum = Criterion{
		Name:   "percent_sum",
		Key:    func(rs snapshots.RelativeStrength) float64 { return rs.RSPercentSum },
		Assign: func(rs *snapshots.RelativeStrength, rank int) { rs.RSNumber = rank },
	}

	// ByDistanceTo52WeekHigh ranks quotations closest to their 52-week high first
	ByDistanceTo52WeekHigh = Criterion{
		Name:   "distance_to_52_week_high",
		Key:    func(rs snapshots.RelativeStrength) float64 { return rs.DistanceTo52WeekHigh },
		Assign: func(rs *snapshots.RelativeStrength, rank int) { rs.RSNumberDistance52WeekHigh = rank },
	}

	// ByUpDownVolumeRatio ranks by accumulation/distribution volume ratio
	ByUpDownVolumeRatio = Criterion{
		Name:   "up_down_volume_ratio",
		Key:    func(rs snapshots.RelativeStrength) float64 { return rs.UpDownVolumeRatio },
		Assign: func(rs *snapshots.RelativeStrength, rank int) { rs.RSNumberUpDownVolumeRatio = rank },
	}
)

// Criteria lists every ranking applied by RankAll
var Criteria = []Criterion{ByPercentSum, ByDistanceTo52WeekHigh, ByUpDownVolumeRatio}

type entry struct {
	quotationID int64
	rs          snapshots.RelativeStrength
}

// Ranker writes relative-strength ranks into a snapshot table
type Ranker struct {
	table *snapshots.Table
	log   zerolog.Logger
}

// NewRanker creates a ranker over table
func NewRanker(table *snapshots.Table, log zerolog.Logger) *Ranker {
	return &Ranker{
		table: table,
		log:   log.With().Str("component", "ranking").Logger(),
	}
}

// Apply ranks the given latest quotations of a universe by one criterion and
// returns the number of ranked quotations. Quotations without a
// relative-strength snapshot are skipped and do not count toward N.
func (r *Ranker) Apply(latest []*domain.Quotation, c Criterion) int {
	entries := r.collect(latest)

	Rank(entries, func(e entry) float64 { return c.Key(e.rs) }, func(e entry, rank int) {
		r.table.UpdateRelativeStrength(e.quotationID, func(rs *snapshots.RelativeStrength) {
			c.Assign(rs, rank)
		})
	})

	r.log.Debug().
		Str("criterion", c.Name).
		Int("ranked", len(entries)).
		Int("skipped", len(latest)-len(entries)).
		Msg("Relative strength ranked")

	return len(entries)
}

// RankAll applies every criterion to the same universe
func (r *Ranker) RankAll(latest []*domain.Quotation) int {
	var ranked int
	for _, c := range Criteria {
		ranked = r.Apply(latest, c)
	}
	return ranked
}

// collect reads the snapshot values once so sorting works on a stable copy
func (r *Ranker) collect(latest []*domain.Quotation) []entry {
	entries := make([]entry, 0, len(latest))
	for _, q := range latest {
		if q == nil {
			continue
		}
		rs, ok := r.table.RelativeStrength(q.ID)
		if !ok {
			continue
		}
		entries = append(entries, entry{quotationID: q.ID, rs: rs})
	}
	return entries
}
