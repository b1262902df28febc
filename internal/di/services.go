package di

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aristath/trendwatch/internal/config"
	"github.com/aristath/trendwatch/internal/events"
	"github.com/aristath/trendwatch/internal/modules/classifier"
	"github.com/aristath/trendwatch/internal/modules/indicators"
	"github.com/aristath/trendwatch/internal/modules/protocol"
	"github.com/aristath/trendwatch/internal/modules/scan"
	"github.com/aristath/trendwatch/internal/modules/statistics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// InitializeServices creates the engine services and the configured scan
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)

	container.MetricsRegistry = prometheus.NewRegistry()
	container.MetricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	container.ScanMetrics = scan.NewMetrics(container.MetricsRegistry)

	container.Classifier = classifier.New(classifier.NewHealth(cfg.Health), log)
	container.Calculator = indicators.NewCalculator(container.SnapshotTable, log)
	container.Aggregator = statistics.NewAggregator(container.Classifier, log)

	profiles, err := protocol.LoadProfiles(cfg.ProtocolProfilesPath)
	if err != nil {
		return err
	}
	container.ProtocolBuilder = protocol.NewBuilder(container.Classifier, container.SnapshotTable, profiles, log)

	container.ScanRunner = scan.NewRunner(
		container.ScanRegistry,
		container.HistoryRepo,
		container.HistoryRepo,
		container.SnapshotTable,
		container.Classifier,
		container.StatisticsRepo,
		scan.Options{
			SnapshotDepth: cfg.Scan.SnapshotDepth,
			Snapshots:     container.SnapshotStore,
			Events:        container.EventManager,
			Metrics:       container.ScanMetrics,
		},
		log,
	)

	defaultScan, err := ensureScan(container.ScanRegistry, cfg.Scan)
	if err != nil {
		return err
	}
	container.DefaultScan = defaultScan

	return nil
}

// ensureScan returns the scan named in cfg, creating it on first start. The
// list IDs of an existing scan follow the configuration.
func ensureScan(registry *scan.Registry, cfg config.ScanConfig) (*scan.Scan, error) {
	existing, err := registry.FindByName(cfg.Name)
	if errors.Is(err, scan.ErrScanNotFound) {
		s := scan.New(uuid.New().String(), cfg.Name, cfg.ListIDs)
		if err := registry.Add(s); err != nil {
			return nil, fmt.Errorf("failed to create scan %s: %w", cfg.Name, err)
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if slices.Equal(existing.ListIDs, cfg.ListIDs) {
		return existing, nil
	}

	rec := existing.Record()
	rec.ListIDs = cfg.ListIDs
	s := scan.FromRecord(rec)
	if err := registry.Add(s); err != nil {
		return nil, fmt.Errorf("failed to update scan %s: %w", cfg.Name, err)
	}
	return s, nil
}
