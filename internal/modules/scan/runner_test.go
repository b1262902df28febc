package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/events"
	"github.com/aristath/trendwatch/internal/modules/classifier"
	"github.com/aristath/trendwatch/internal/modules/history"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/aristath/trendwatch/internal/modules/statistics"
	testingpkg "github.com/aristath/trendwatch/internal/testing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const historyDays = 70

// lastDay is the newest quotation date of every fixture series
var lastDay = testingpkg.FixtureStart.AddDate(0, 0, historyDays-1)

type mockSnapshotSaver struct {
	mock.Mock
}

func (m *mockSnapshotSaver) Save(table *snapshots.Table) error {
	args := m.Called(table)
	return args.Error(0)
}

type mockQuotationSource struct {
	mock.Mock
}

func (m *mockQuotationSource) Quotations(instrumentID int64) (domain.Sequence, error) {
	args := m.Called(instrumentID)
	seq, _ := args.Get(0).(domain.Sequence)
	return seq, args.Error(1)
}

type runnerFixture struct {
	source   *history.MemorySource
	registry *Registry
	table    *snapshots.Table
	stats    *statistics.InMemoryRepository
	bus      *events.Bus
	metrics  *Metrics
	scanID   string
}

// newRunnerFixture registers AAPL, MSFT and NVDA as stocks and SPY as an ETF,
// all in list 1, with steepening uptrends from NVDA to AAPL.
func newRunnerFixture(t *testing.T) *runnerFixture {
	source := history.NewMemorySource()
	instruments := testingpkg.NewInstrumentFixtures()
	steps := map[string]float64{"AAPL": 1, "MSFT": 0.5, "NVDA": -0.2, "SPY": 0.3}

	for i, inst := range instruments[:4] {
		closes := testingpkg.NewTrendingCloses(historyDays, 100, steps[inst.Symbol])
		quotations := testingpkg.NewQuotationSeries(inst.ID, int64(i*1000+1), closes...)
		require.NoError(t, source.Add(inst, quotations, 1))
	}

	registry, err := NewRegistry(NewMemoryStore(), zerolog.Nop())
	require.NoError(t, err)
	s := New("scan-1", "nightly", []int64{1})
	require.NoError(t, registry.Add(s))

	return &runnerFixture{
		source:   source,
		registry: registry,
		table:    snapshots.NewTable(),
		stats:    statistics.NewInMemoryRepository(),
		bus:      events.NewBus(),
		metrics:  NewMetrics(prometheus.NewRegistry()),
		scanID:   s.ID,
	}
}

func (f *runnerFixture) runner(quotations history.QuotationSource, saver SnapshotSaver) *Runner {
	c := classifier.New(classifier.NewHealth(classifier.DefaultHealthConfig()), zerolog.Nop())
	opts := Options{
		Events:  events.NewManager(f.bus, zerolog.Nop()),
		Metrics: f.metrics,
	}
	if saver != nil {
		opts.Snapshots = saver
	}
	return NewRunner(f.registry, f.source, quotations, f.table, c, f.stats, opts, zerolog.Nop())
}

func (f *runnerFixture) latestID(t *testing.T, instrumentID int64) int64 {
	seq, err := f.source.Quotations(instrumentID)
	require.NoError(t, err)
	return seq.Latest().ID
}

func TestRunner_Execute(t *testing.T) {
	f := newRunnerFixture(t)

	var received []events.EventType
	for _, et := range []events.EventType{events.ScanStarted, events.ScanFinished, events.StatisticCreated, events.ErrorOccurred} {
		f.bus.Subscribe(et, func(e events.Event) { received = append(received, e.Type) })
	}

	saver := &mockSnapshotSaver{}
	saver.On("Save", f.table).Return(nil).Once()

	rec, err := f.runner(f.source, saver).Execute(context.Background(), f.scanID)
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, rec.ExecutionStatus)
	assert.Equal(t, CompletionComplete, rec.CompletionStatus)
	assert.Equal(t, 100, rec.Progress)
	assert.False(t, rec.LastScan.IsZero())
	assert.Empty(t, rec.FailedInstruments)
	saver.AssertExpectations(t)

	t.Run("moving averages for every quotation", func(t *testing.T) {
		ma, ok := f.table.MovingAverage(f.latestID(t, 1))
		require.True(t, ok)
		assert.NotZero(t, ma.SMA10)
		assert.NotZero(t, ma.SMA50)
		assert.Zero(t, ma.SMA200, "history is too short")
		assert.Equal(t, historyDays*4, len(f.table.MovingAverages()))
	})

	t.Run("ranks within each universe", func(t *testing.T) {
		expected := map[int64]int{1: 100, 2: 67, 3: 33, 4: 100}
		for id, rank := range expected {
			rs, ok := f.table.RelativeStrength(f.latestID(t, id))
			require.True(t, ok)
			assert.Equal(t, rank, rs.RSNumber, "instrument %d", id)
		}
	})

	t.Run("one statistic per universe", func(t *testing.T) {
		stocks, err := f.stats.Get(lastDay, domain.InstrumentTypeStock)
		require.NoError(t, err)
		assert.Equal(t, 3, stocks.NumberOfInstruments)
		assert.Equal(t, 2, stocks.NumberAdvance)
		assert.Equal(t, 1, stocks.NumberDecline)

		etfs, err := f.stats.Get(lastDay, domain.InstrumentTypeETF)
		require.NoError(t, err)
		assert.Equal(t, 1, etfs.NumberOfInstruments)
	})

	t.Run("one statistic per scan list", func(t *testing.T) {
		list, err := f.stats.GetForList(lastDay, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.InstrumentTypeList, list.UniverseType)
		assert.Equal(t, 4, list.NumberOfInstruments)
		assert.Equal(t, 3, list.NumberAdvance)
		assert.Equal(t, 1, list.NumberDecline)
	})

	t.Run("events and metrics", func(t *testing.T) {
		require.NotEmpty(t, received)
		assert.Equal(t, events.ScanStarted, received[0])
		assert.Equal(t, events.ScanFinished, received[len(received)-1])
		assert.NotContains(t, received, events.ErrorOccurred)

		statEvents := 0
		for _, et := range received {
			if et == events.StatisticCreated {
				statEvents++
			}
		}
		assert.Equal(t, 3, statEvents, "stocks, ETFs and list 1")

		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ScansTotal.WithLabelValues("COMPLETE")))
		assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.InstrumentsProcessed))
		assert.Equal(t, 100.0, testutil.ToFloat64(f.metrics.Progress.WithLabelValues("nightly")))
	})
}

func TestRunner_RerunUpdatesStatistic(t *testing.T) {
	f := newRunnerFixture(t)
	runner := f.runner(f.source, nil)

	_, err := runner.Execute(context.Background(), f.scanID)
	require.NoError(t, err)
	first, err := f.stats.Get(lastDay, domain.InstrumentTypeStock)
	require.NoError(t, err)

	var updated []bool
	f.bus.Subscribe(events.StatisticCreated, func(e events.Event) {
		updated = append(updated, e.Data.(*events.StatisticCreatedData).Updated)
	})

	rec, err := runner.Execute(context.Background(), f.scanID)
	require.NoError(t, err)
	assert.Equal(t, CompletionComplete, rec.CompletionStatus)
	assert.Equal(t, []bool{true, true, true}, updated)

	stored, err := f.stats.List(domain.InstrumentTypeStock, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, first.ID, stored[0].ID)
}

func TestRunner_FailedInstrument(t *testing.T) {
	f := newRunnerFixture(t)

	quotations := &mockQuotationSource{}
	for _, id := range []int64{1, 3, 4} {
		seq, err := f.source.Quotations(id)
		require.NoError(t, err)
		quotations.On("Quotations", id).Return(seq, nil)
	}
	quotations.On("Quotations", int64(2)).Return(nil, errors.New("disk I/O error"))

	var errorsSeen int
	f.bus.Subscribe(events.ErrorOccurred, func(events.Event) { errorsSeen++ })

	rec, err := f.runner(quotations, nil).Execute(context.Background(), f.scanID)
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, rec.ExecutionStatus)
	assert.Equal(t, CompletionIncomplete, rec.CompletionStatus)
	assert.Equal(t, []string{"MSFT"}, rec.FailedInstruments)
	assert.Equal(t, 1, errorsSeen)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.InstrumentsFailed))

	stocks, err := f.stats.Get(lastDay, domain.InstrumentTypeStock)
	require.NoError(t, err)
	assert.Equal(t, 2, stocks.NumberOfInstruments)

	rs, ok := f.table.RelativeStrength(f.latestID(t, 3))
	require.True(t, ok)
	assert.Equal(t, 50, rs.RSNumber, "ranked among the remaining stocks")
	quotations.AssertExpectations(t)
}

// newestFirst turns a generated series into a sequence without validating it
func newestFirst(quotations []*domain.Quotation) domain.Sequence {
	seq := make(domain.Sequence, len(quotations))
	for i, q := range quotations {
		seq[len(quotations)-1-i] = q
	}
	return seq
}

func TestRunner_QuotationsWithoutIDs(t *testing.T) {
	f := newRunnerFixture(t)

	quotations := &mockQuotationSource{}
	for _, id := range []int64{1, 2, 3, 4} {
		closes := testingpkg.NewTrendingCloses(historyDays, 100, float64(id))
		quotations.On("Quotations", id).Return(newestFirst(testingpkg.NewQuotationSeries(id, 0, closes...)), nil)
	}

	rec, err := f.runner(quotations, nil).Execute(context.Background(), f.scanID)
	require.NoError(t, err)

	assert.Equal(t, CompletionIncomplete, rec.CompletionStatus)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA", "SPY"}, rec.FailedInstruments)
	assert.Zero(t, f.table.Len(), "no snapshot may be keyed by a missing id")
	assert.Empty(t, f.table.RelativeStrengths())

	_, err = f.stats.Get(lastDay, domain.InstrumentTypeStock)
	assert.ErrorIs(t, err, statistics.ErrStatisticNotFound)
}

func TestRunner_QuotationIDsSharedBetweenInstruments(t *testing.T) {
	f := newRunnerFixture(t)

	quotations := &mockQuotationSource{}
	for _, id := range []int64{1, 3, 4} {
		seq, err := f.source.Quotations(id)
		require.NoError(t, err)
		quotations.On("Quotations", id).Return(seq, nil)
	}
	aapl, err := f.source.Quotations(1)
	require.NoError(t, err)
	quotations.On("Quotations", int64(2)).Return(aapl, nil)

	rec, err := f.runner(quotations, nil).Execute(context.Background(), f.scanID)
	require.NoError(t, err)

	assert.Equal(t, CompletionIncomplete, rec.CompletionStatus)
	assert.Equal(t, []string{"MSFT"}, rec.FailedInstruments)

	// AAPL and NVDA keep distinct ranks
	expected := map[int64]int{1: 100, 3: 50}
	for id, rank := range expected {
		rs, ok := f.table.RelativeStrength(f.latestID(t, id))
		require.True(t, ok)
		assert.Equal(t, rank, rs.RSNumber, "instrument %d", id)
	}
}

func TestRunner_ListStatistics(t *testing.T) {
	f := newRunnerFixture(t)

	source := history.NewMemorySource()
	instruments := testingpkg.NewInstrumentFixtures()
	steps := map[string]float64{"AAPL": 1, "MSFT": 0.5, "NVDA": -0.2, "SPY": 0.3}
	memberships := map[string][]int64{"AAPL": {1, 2}, "MSFT": {1}, "NVDA": {2}, "SPY": {2}}
	for i, inst := range instruments[:4] {
		closes := testingpkg.NewTrendingCloses(historyDays, 100, steps[inst.Symbol])
		quotations := testingpkg.NewQuotationSeries(inst.ID, int64(i*1000+1), closes...)
		require.NoError(t, source.Add(inst, quotations, memberships[inst.Symbol]...))
	}
	f.source = source

	s := New("scan-lists", "lists", []int64{1, 2, 3})
	require.NoError(t, f.registry.Add(s))

	rec, err := f.runner(source, nil).Execute(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, CompletionComplete, rec.CompletionStatus)

	tests := []struct {
		listID      int64
		instruments int
		advance     int
		decline     int
	}{
		{listID: 1, instruments: 2, advance: 2, decline: 0},
		{listID: 2, instruments: 3, advance: 2, decline: 1},
	}
	for _, tt := range tests {
		stat, err := f.stats.GetForList(lastDay, tt.listID)
		require.NoError(t, err, "list %d", tt.listID)
		assert.Equal(t, tt.instruments, stat.NumberOfInstruments, "list %d", tt.listID)
		assert.Equal(t, tt.advance, stat.NumberAdvance, "list %d", tt.listID)
		assert.Equal(t, tt.decline, stat.NumberDecline, "list %d", tt.listID)
	}

	// a list without members produces no statistic
	_, err = f.stats.GetForList(lastDay, 3)
	assert.ErrorIs(t, err, statistics.ErrStatisticNotFound)

	// type universes are unaffected by list overlap
	stocks, err := f.stats.Get(lastDay, domain.InstrumentTypeStock)
	require.NoError(t, err)
	assert.Equal(t, 3, stocks.NumberOfInstruments)
}

func TestRunner_Cancelled(t *testing.T) {
	f := newRunnerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := f.runner(f.source, nil).Execute(ctx, f.scanID)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, StatusFinished, rec.ExecutionStatus)
	assert.Equal(t, CompletionIncomplete, rec.CompletionStatus)
	assert.Equal(t, 0, rec.Progress)

	stored, err := f.stats.List(domain.InstrumentTypeStock, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ScansTotal.WithLabelValues("INCOMPLETE")))
}

func TestRunner_AlreadyRunning(t *testing.T) {
	f := newRunnerFixture(t)
	s, err := f.registry.Get(f.scanID)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.SetProgress(30)

	rec, err := f.runner(f.source, nil).Execute(context.Background(), f.scanID)
	assert.ErrorIs(t, err, ErrScanInProgress)
	assert.Equal(t, StatusInProgress, rec.ExecutionStatus)
	assert.Equal(t, 30, rec.Progress)
	assert.Zero(t, f.table.Len())
}

func TestRunner_UnknownScan(t *testing.T) {
	f := newRunnerFixture(t)
	_, err := f.runner(f.source, nil).Execute(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrScanNotFound)
}

func TestRunner_SnapshotSaveFailureIsIncomplete(t *testing.T) {
	f := newRunnerFixture(t)
	saver := &mockSnapshotSaver{}
	saver.On("Save", mock.Anything).Return(errors.New("database is locked"))

	rec, err := f.runner(f.source, saver).Execute(context.Background(), f.scanID)
	require.NoError(t, err)
	assert.Equal(t, CompletionIncomplete, rec.CompletionStatus)
	assert.Empty(t, rec.FailedInstruments)
}
