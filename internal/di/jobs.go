package di

import (
	"context"

	"github.com/aristath/trendwatch/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduled jobs. Scan runs stop when ctx is cancelled.
func RegisterJobs(ctx context.Context, container *Container, log zerolog.Logger) *JobInstances {
	return &JobInstances{
		Scan: scheduler.NewScanJob(
			ctx,
			container.ScanRunner,
			container.DefaultScan.ID,
			container.DefaultScan.Name,
			log,
		),
		WALCheckpoints: scheduler.NewCheckWALCheckpointsJob(container.DB, log),
	}
}
