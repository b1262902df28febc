package statistics

import (
	"testing"
	"time"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/modules/classifier"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tradingDay = time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)

type point struct {
	close  float64
	volume int64
}

// sequence builds quotations for instrument ending on end, points newest first
func sequence(instrumentID int64, end time.Time, points ...point) domain.Sequence {
	seq := make(domain.Sequence, len(points))
	for i, p := range points {
		seq[i] = &domain.Quotation{
			ID:           instrumentID*100 + int64(len(points)-i),
			InstrumentID: instrumentID,
			Date:         end.AddDate(0, 0, -i),
			High:         p.close,
			Low:          p.close,
			Close:        p.close,
			Volume:       p.volume,
		}
	}
	return seq
}

func newAggregator() *Aggregator {
	c := classifier.New(classifier.NewHealth(classifier.DefaultHealthConfig()), zerolog.Nop())
	return NewAggregator(c, zerolog.Nop())
}

func TestAggregator_Calculate(t *testing.T) {
	a := sequence(1, tradingDay, point{110, 1500}, point{100, 1000})
	b := sequence(2, tradingDay, point{95, 500}, point{100, 1000})
	stale := sequence(3, tradingDay.AddDate(0, 0, -1), point{120, 5000}, point{100, 1000})
	fresh := sequence(4, tradingDay, point{100, 800})

	days := []classifier.Day{
		{Sequence: a, MovingAverage: snapshots.MovingAverage{SMA50: 105, SMA200: 100, SMA30Volume: 1000}},
		{Sequence: b, MovingAverage: snapshots.MovingAverage{SMA50: 100, SMA30Volume: 1000}},
		{Sequence: stale, MovingAverage: snapshots.MovingAverage{SMA50: 90, SMA30Volume: 1000}},
		{Sequence: fresh, MovingAverage: snapshots.MovingAverage{SMA50: 90}},
	}

	stat := newAggregator().Calculate(tradingDay.Add(15*time.Hour), domain.InstrumentTypeStock, days)
	require.NotNil(t, stat)

	assert.NotEmpty(t, stat.ID)
	assert.Equal(t, tradingDay, stat.Date)
	assert.Equal(t, domain.InstrumentTypeStock, stat.UniverseType)
	assert.Equal(t, 3, stat.NumberOfInstruments)
	assert.Equal(t, 1, stat.NumberAdvance)
	assert.Equal(t, 1, stat.NumberDecline)
	assert.Equal(t, 2, stat.NumberAboveSma50)
	assert.Equal(t, 1, stat.NumberAtOrBelowSma50)
	assert.Equal(t, 1, stat.NumberAboveSma200)
	assert.Equal(t, 0, stat.NumberAtOrBelowSma200)
	assert.Equal(t, 2, stat.NumberRitterMarketTrend)
	assert.Equal(t, 1, stat.NumberUpOnVolume)
	assert.Equal(t, 0, stat.NumberDownOnVolume)
	assert.Equal(t, 0, stat.NumberChurning)
	assert.Equal(t, 67, stat.PercentAboveSma50())
	assert.Equal(t, 100, stat.PercentAboveSma200())
	assert.Equal(t, 0, stat.AdvanceDeclineSum())
}

func TestAggregator_CalculateEmptyUniverse(t *testing.T) {
	stat := newAggregator().Calculate(tradingDay, domain.InstrumentTypeETF, nil)
	assert.Equal(t, 0, stat.NumberOfInstruments)
	assert.Equal(t, 0, stat.PercentAboveSma50())
}

func TestAggregator_CalculateHistory(t *testing.T) {
	a := sequence(1, tradingDay, point{110, 1500}, point{100, 1000}, point{105, 1000})
	b := sequence(2, tradingDay.AddDate(0, 0, -1), point{90, 500}, point{95, 1000})

	stats := newAggregator().CalculateHistory(domain.InstrumentTypeStock, []domain.Sequence{a, b}, snapshots.NewTable())
	require.Len(t, stats, 3)

	assert.Equal(t, tradingDay, stats[0].Date)
	assert.Equal(t, 1, stats[0].NumberOfInstruments)
	assert.Equal(t, 1, stats[0].NumberAdvance)

	assert.Equal(t, tradingDay.AddDate(0, 0, -1), stats[1].Date)
	assert.Equal(t, 2, stats[1].NumberOfInstruments)
	assert.Equal(t, 2, stats[1].NumberDecline)

	assert.Equal(t, tradingDay.AddDate(0, 0, -2), stats[2].Date)
	assert.Equal(t, 2, stats[2].NumberOfInstruments)
	assert.Equal(t, 0, stats[2].NumberAdvance+stats[2].NumberDecline, "oldest days have no previous quotation")
}

func TestAggregator_CalculateForList(t *testing.T) {
	days := []classifier.Day{
		{Sequence: sequence(1, tradingDay, point{110, 1500}, point{100, 1000})},
		{Sequence: sequence(2, tradingDay, point{95, 500}, point{100, 1000})},
	}

	stat := newAggregator().CalculateForList(tradingDay, 7, days)

	assert.Equal(t, domain.InstrumentTypeList, stat.UniverseType)
	assert.Equal(t, int64(7), stat.ListID)
	assert.Equal(t, 2, stat.NumberOfInstruments)
	assert.Equal(t, 1, stat.NumberAdvance)
	assert.Equal(t, 1, stat.NumberDecline)
	assert.NoError(t, stat.validateUniverse())
}
