package di

import (
	"fmt"

	"github.com/aristath/trendwatch/internal/modules/history"
	"github.com/aristath/trendwatch/internal/modules/scan"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/aristath/trendwatch/internal/modules/statistics"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories and restores the stored snapshots
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	conn := container.DB.Conn()

	container.HistoryRepo = history.NewRepository(conn, log)
	container.SnapshotStore = history.NewSnapshotStore(conn, log)
	container.StatisticsRepo = statistics.NewSQLiteRepository(conn, log)
	container.ScanStore = scan.NewSQLiteStore(conn, log)

	container.SnapshotTable = snapshots.NewTable()
	loaded, err := container.SnapshotStore.Load(container.SnapshotTable)
	if err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}

	registry, err := scan.NewRegistry(container.ScanStore, log)
	if err != nil {
		return err
	}
	container.ScanRegistry = registry

	log.Info().
		Int("snapshots", loaded).
		Int("scans", len(registry.List())).
		Msg("Repositories initialized")

	return nil
}
