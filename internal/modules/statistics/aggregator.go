package statistics

import (
	"sort"
	"time"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/modules/classifier"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Aggregator sums classifier outcomes across a universe
type Aggregator struct {
	classifier *classifier.Classifier
	log        zerolog.Logger
}

// NewAggregator creates an aggregator using c for the daily predicates
func NewAggregator(c *classifier.Classifier, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		classifier: c,
		log:        log.With().Str("component", "statistics").Logger(),
	}
}

// Calculate builds the Statistic of universe on date. Only days whose current
// quotation falls on date are counted; each counts as one instrument.
func (a *Aggregator) Calculate(date time.Time, universe domain.InstrumentType, days []classifier.Day) *Statistic {
	stat := &Statistic{
		ID:           uuid.New().String(),
		Date:         domain.TruncateDate(date),
		UniverseType: universe,
	}

	c := a.classifier
	for _, d := range days {
		current := d.Current()
		if current == nil || !domain.SameDay(current.Date, date) {
			continue
		}

		stat.NumberOfInstruments++
		stat.NumberAdvance += c.Advance(d).Count()
		stat.NumberDecline += c.Decline(d).Count()
		stat.NumberAboveSma50 += c.AboveSma50(d).Count()
		stat.NumberAtOrBelowSma50 += c.AtOrBelowSma50(d).Count()
		stat.NumberAboveSma200 += c.AboveSma200(d).Count()
		stat.NumberAtOrBelowSma200 += c.AtOrBelowSma200(d).Count()
		stat.NumberRitterMarketTrend += c.RitterMarketTrend(d)
		stat.NumberUpOnVolume += c.UpOnVolume(d).Count()
		stat.NumberDownOnVolume += c.DownOnVolume(d).Count()
		stat.NumberBearishReversal += c.BearishReversal(d).Count()
		stat.NumberBullishReversal += c.BullishReversal(d).Count()
		stat.NumberChurning += c.Churning(d).Count()
	}

	a.log.Debug().
		Str("universe", string(universe)).
		Time("date", stat.Date).
		Int("instruments", stat.NumberOfInstruments).
		Int("advance_decline", stat.AdvanceDeclineSum()).
		Msg("Statistic calculated")

	return stat
}

// CalculateForList builds the LIST Statistic of list listID on date
func (a *Aggregator) CalculateForList(date time.Time, listID int64, days []classifier.Day) *Statistic {
	stat := a.Calculate(date, domain.InstrumentTypeList, days)
	stat.ListID = listID
	return stat
}

// CalculateHistory builds one Statistic for every date present in any of the
// sequences, newest first. The previous day of an instrument is the next
// older quotation of its own sequence.
func (a *Aggregator) CalculateHistory(universe domain.InstrumentType, sequences []domain.Sequence, table *snapshots.Table) []*Statistic {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, seq := range sequences {
		for _, q := range seq {
			d := domain.TruncateDate(q.Date)
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	stats := make([]*Statistic, 0, len(dates))
	for _, date := range dates {
		days := make([]classifier.Day, 0, len(sequences))
		for _, seq := range sequences {
			if idx := seq.IndexOfDate(date); idx >= 0 {
				days = append(days, classifier.NewDay(seq, idx, table))
			}
		}
		stats = append(stats, a.Calculate(date, universe, days))
	}

	return stats
}
