// Package di wires databases, repositories, services and jobs into one container.
package di

import (
	"github.com/aristath/trendwatch/internal/database"
	"github.com/aristath/trendwatch/internal/events"
	"github.com/aristath/trendwatch/internal/modules/classifier"
	"github.com/aristath/trendwatch/internal/modules/history"
	"github.com/aristath/trendwatch/internal/modules/indicators"
	"github.com/aristath/trendwatch/internal/modules/protocol"
	"github.com/aristath/trendwatch/internal/modules/scan"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/aristath/trendwatch/internal/modules/statistics"
	"github.com/aristath/trendwatch/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all dependencies for the application
type Container struct {
	// Database
	DB *database.DB

	// Repositories
	HistoryRepo    *history.Repository
	SnapshotStore  *history.SnapshotStore
	StatisticsRepo *statistics.SQLiteRepository
	ScanStore      *scan.SQLiteStore

	// Shared state
	SnapshotTable *snapshots.Table
	ScanRegistry  *scan.Registry

	// Events and metrics
	EventBus        *events.Bus
	EventManager    *events.Manager
	MetricsRegistry *prometheus.Registry
	ScanMetrics     *scan.Metrics

	// Services
	Classifier      *classifier.Classifier
	Calculator      *indicators.Calculator
	Aggregator      *statistics.Aggregator
	ProtocolBuilder *protocol.Builder
	ScanRunner      *scan.Runner

	// DefaultScan is the scan run by the scheduler
	DefaultScan *scan.Scan
}

// JobInstances holds the scheduled jobs
type JobInstances struct {
	Scan           *scheduler.ScanJob
	WALCheckpoints *scheduler.CheckWALCheckpointsJob
}

// Close releases the database
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
