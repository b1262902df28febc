package scan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/events"
	"github.com/aristath/trendwatch/internal/modules/classifier"
	"github.com/aristath/trendwatch/internal/modules/history"
	"github.com/aristath/trendwatch/internal/modules/indicators"
	"github.com/aristath/trendwatch/internal/modules/ranking"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/aristath/trendwatch/internal/modules/statistics"
	"github.com/rs/zerolog"
)

// ErrNoQuotations is returned for an instrument without any quotation
var ErrNoQuotations = errors.New("instrument has no quotations")

// SnapshotSaver persists the snapshot side-table after a run
type SnapshotSaver interface {
	Save(table *snapshots.Table) error
}

// Options configures a Runner. Every collaborator is optional.
type Options struct {
	// SnapshotDepth is the number of newest quotations per instrument whose
	// moving averages are recomputed. 0 recomputes the whole history.
	SnapshotDepth int
	Snapshots     SnapshotSaver
	Events        *events.Manager
	Metrics       *Metrics
}

// Runner executes scans
type Runner struct {
	registry    *Registry
	instruments history.InstrumentSource
	quotations  history.QuotationSource
	table       *snapshots.Table
	calculator  *indicators.Calculator
	ranker      *ranking.Ranker
	aggregator  *statistics.Aggregator
	statistics  statistics.Repository
	opts        Options
	log         zerolog.Logger
}

// NewRunner creates a runner writing snapshots into table and statistics into stats
func NewRunner(
	registry *Registry,
	instruments history.InstrumentSource,
	quotations history.QuotationSource,
	table *snapshots.Table,
	c *classifier.Classifier,
	stats statistics.Repository,
	opts Options,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		registry:    registry,
		instruments: instruments,
		quotations:  quotations,
		table:       table,
		calculator:  indicators.NewCalculator(table, log),
		ranker:      ranking.NewRanker(table, log),
		aggregator:  statistics.NewAggregator(c, log),
		statistics:  stats,
		opts:        opts,
		log:         log.With().Str("component", "scan_runner").Logger(),
	}
}

// universe collects the newest state of the instruments of one type
type universe struct {
	latest []*domain.Quotation
	days   []classifier.Day
}

// run holds the state of one execution
type run struct {
	universes map[domain.InstrumentType]*universe
	// days of the successfully processed instruments by instrument ID
	days map[int64]classifier.Day
	// owners maps every quotation ID seen so far to its instrument, since
	// snapshots are keyed by quotation ID alone
	owners map[int64]int64
}

// Execute runs the scan with id: moving averages and ranking inputs per
// instrument, then ranks and the daily statistic per instrument type and one
// LIST statistic per list of the scan.
// Cancelling ctx stops the run between instruments and leaves the scan
// FINISHED and INCOMPLETE. A running scan fails with ErrScanInProgress.
func (r *Runner) Execute(ctx context.Context, id string) (Record, error) {
	s, err := r.registry.Get(id)
	if err != nil {
		return Record{}, err
	}
	if err := s.Start(); err != nil {
		return s.Record(), fmt.Errorf("failed to start scan %s: %w", s.Name, err)
	}

	started := time.Now()
	log := r.log.With().Str("scan_id", s.ID).Str("scan", s.Name).Logger()
	r.persist(s, log)

	instruments, err := r.instruments.ListInstruments(s.ListIDs...)
	if err != nil {
		r.finish(s, true, nil, started, log)
		return s.Record(), fmt.Errorf("failed to list instruments of scan %s: %w", s.Name, err)
	}

	r.emit(&events.ScanStartedData{ScanID: s.ID, Name: s.Name, Instruments: len(instruments)})
	log.Info().Int("instruments", len(instruments)).Msg("Scan started")

	progress := NewProgressReporter(s, r.opts.Events, r.opts.Metrics)
	state := &run{
		universes: make(map[domain.InstrumentType]*universe),
		days:      make(map[int64]classifier.Day),
		owners:    make(map[int64]int64),
	}
	var failed []string
	var ctxErr error

	for i, inst := range instruments {
		if ctxErr = ctx.Err(); ctxErr != nil {
			log.Warn().Err(ctxErr).Int("processed", i).Msg("Scan interrupted")
			break
		}

		if err := r.processInstrument(inst, state); err != nil {
			failed = append(failed, inst.Symbol)
			log.Warn().Err(err).Str("symbol", inst.Symbol).Msg("Failed to process instrument")
			r.emitError(err, map[string]interface{}{"scan_id": s.ID, "symbol": inst.Symbol})
			if r.opts.Metrics != nil {
				r.opts.Metrics.InstrumentsFailed.Inc()
			}
		} else if r.opts.Metrics != nil {
			r.opts.Metrics.InstrumentsProcessed.Inc()
		}

		progress.Report(i+1, len(instruments), inst.Symbol)
	}

	incomplete := ctxErr != nil
	if !incomplete {
		for _, t := range sortedTypes(state.universes) {
			if err := r.aggregate(t, state.universes[t], log); err != nil {
				incomplete = true
				log.Error().Err(err).Str("universe", string(t)).Msg("Failed to store statistic")
				r.emitError(err, map[string]interface{}{"scan_id": s.ID, "universe": string(t)})
			}
		}

		for _, listID := range s.ListIDs {
			if err := r.aggregateList(listID, state, log); err != nil {
				incomplete = true
				log.Error().Err(err).Int64("list_id", listID).Msg("Failed to store list statistic")
				r.emitError(err, map[string]interface{}{"scan_id": s.ID, "list_id": listID})
			}
		}

		if r.opts.Snapshots != nil {
			if err := r.opts.Snapshots.Save(r.table); err != nil {
				incomplete = true
				log.Error().Err(err).Msg("Failed to persist snapshots")
				r.emitError(err, map[string]interface{}{"scan_id": s.ID})
			}
		}
	}

	rec := r.finish(s, incomplete, failed, started, log)
	if ctxErr != nil {
		return rec, fmt.Errorf("scan %s interrupted: %w", s.Name, ctxErr)
	}
	return rec, nil
}

func (r *Runner) processInstrument(inst *domain.Instrument, state *run) error {
	seq, err := r.quotations.Quotations(inst.ID)
	if err != nil {
		return fmt.Errorf("failed to load quotations of %s: %w", inst.Symbol, err)
	}
	if len(seq) == 0 {
		return fmt.Errorf("%s: %w", inst.Symbol, ErrNoQuotations)
	}
	if err := seq.Validate(); err != nil {
		return fmt.Errorf("invalid quotations of %s: %w", inst.Symbol, err)
	}
	for _, q := range seq {
		if owner, ok := state.owners[q.ID]; ok && owner != inst.ID {
			return fmt.Errorf("quotation %d of %s already belongs to instrument %d", q.ID, inst.Symbol, owner)
		}
	}
	for _, q := range seq {
		state.owners[q.ID] = inst.ID
	}

	r.calculator.UpdateSnapshots(seq, r.opts.SnapshotDepth)
	latest := r.ranker.UpdateInputs(seq)
	day := classifier.NewDay(seq, 0, r.table)

	u, ok := state.universes[inst.Type]
	if !ok {
		u = &universe{}
		state.universes[inst.Type] = u
	}
	u.latest = append(u.latest, latest)
	u.days = append(u.days, day)
	state.days[inst.ID] = day
	return nil
}

// aggregate ranks a universe and stores its statistic of the newest date.
// An existing statistic of that date is updated.
func (r *Runner) aggregate(t domain.InstrumentType, u *universe, log zerolog.Logger) error {
	ranked := r.ranker.RankAll(u.latest)

	var date time.Time
	for _, q := range u.latest {
		if q.Date.After(date) {
			date = q.Date
		}
	}

	stat := r.aggregator.Calculate(date, t, u.days)
	updated, err := r.store(stat)
	if err != nil {
		return fmt.Errorf("failed to store statistic of %s: %w", t, err)
	}

	log.Info().
		Str("universe", string(t)).
		Time("date", stat.Date).
		Int("ranked", ranked).
		Int("instruments", stat.NumberOfInstruments).
		Bool("updated", updated).
		Msg("Universe aggregated")

	return nil
}

// aggregateList stores the LIST statistic of one list of the scan, counting
// the members that were processed in this run. Instrument types are ranked
// separately, so a list only sums classifier outcomes.
func (r *Runner) aggregateList(listID int64, state *run, log zerolog.Logger) error {
	members, err := r.instruments.ListInstruments(listID)
	if err != nil {
		return fmt.Errorf("failed to list instruments of list %d: %w", listID, err)
	}

	var days []classifier.Day
	var date time.Time
	for _, inst := range members {
		day, ok := state.days[inst.ID]
		if !ok {
			continue
		}
		days = append(days, day)
		if current := day.Current(); current != nil && current.Date.After(date) {
			date = current.Date
		}
	}
	if len(days) == 0 {
		log.Debug().Int64("list_id", listID).Msg("No processed instruments in list")
		return nil
	}

	stat := r.aggregator.CalculateForList(date, listID, days)
	updated, err := r.store(stat)
	if err != nil {
		return fmt.Errorf("failed to store statistic of list %d: %w", listID, err)
	}

	log.Info().
		Int64("list_id", listID).
		Time("date", stat.Date).
		Int("instruments", stat.NumberOfInstruments).
		Bool("updated", updated).
		Msg("List aggregated")

	return nil
}

// store inserts stat or updates the statistic of the same date and universe
func (r *Runner) store(stat *statistics.Statistic) (bool, error) {
	updated := false
	err := r.statistics.Insert(stat)
	if errors.Is(err, statistics.ErrDuplicateStatistic) {
		updated = true
		err = r.statistics.Update(stat)
		if err == nil {
			stat.ID = r.existingID(stat)
		}
	}
	if err != nil {
		return false, err
	}

	if r.opts.Metrics != nil {
		r.opts.Metrics.StatisticsWritten.WithLabelValues(string(stat.UniverseType)).Inc()
	}
	r.emit(&events.StatisticCreatedData{
		StatisticID:  stat.ID,
		Date:         stat.Date,
		UniverseType: string(stat.UniverseType),
		ListID:       stat.ListID,
		Updated:      updated,
	})
	return updated, nil
}

func (r *Runner) existingID(stat *statistics.Statistic) string {
	var existing *statistics.Statistic
	var err error
	if stat.UniverseType == domain.InstrumentTypeList {
		existing, err = r.statistics.GetForList(stat.Date, stat.ListID)
	} else {
		existing, err = r.statistics.Get(stat.Date, stat.UniverseType)
	}
	if err != nil {
		return stat.ID
	}
	return existing.ID
}

func (r *Runner) finish(s *Scan, incomplete bool, failed []string, started time.Time, log zerolog.Logger) Record {
	s.Finish(incomplete, failed, time.Now())
	r.persist(s, log)
	rec := s.Record()
	duration := time.Since(started)

	if r.opts.Metrics != nil {
		r.opts.Metrics.ScansTotal.WithLabelValues(string(rec.CompletionStatus)).Inc()
		r.opts.Metrics.Duration.Observe(duration.Seconds())
		r.opts.Metrics.Progress.WithLabelValues(s.Name).Set(float64(rec.Progress))
	}
	r.emit(&events.ScanFinishedData{
		ScanID:            s.ID,
		CompletionStatus:  string(rec.CompletionStatus),
		FailedInstruments: rec.FailedInstruments,
		Duration:          duration,
	})

	log.Info().
		Str("completion", string(rec.CompletionStatus)).
		Int("failed", len(rec.FailedInstruments)).
		Dur("duration", duration).
		Msg("Scan finished")

	return rec
}

func (r *Runner) persist(s *Scan, log zerolog.Logger) {
	if err := r.registry.Persist(s); err != nil {
		log.Error().Err(err).Msg("Failed to persist scan state")
	}
}

func (r *Runner) emit(data events.EventData) {
	if r.opts.Events != nil {
		r.opts.Events.EmitTyped("scan", data)
	}
}

func (r *Runner) emitError(err error, fields map[string]interface{}) {
	if r.opts.Events != nil {
		r.opts.Events.EmitError("scan", err, fields)
	}
}

func sortedTypes(universes map[domain.InstrumentType]*universe) []domain.InstrumentType {
	types := make([]domain.InstrumentType, 0, len(universes))
	for t := range universes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
