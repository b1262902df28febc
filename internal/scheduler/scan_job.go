package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/trendwatch/internal/modules/scan"
	"github.com/rs/zerolog"
)

// ScanExecutor runs one scan
type ScanExecutor interface {
	Execute(ctx context.Context, id string) (scan.Record, error)
}

// ScanJob executes a scan on schedule
type ScanJob struct {
	ctx      context.Context
	executor ScanExecutor
	scanID   string
	scanName string
	log      zerolog.Logger
}

// NewScanJob creates a job running the scan with scanID. Runs stop when ctx is cancelled.
func NewScanJob(ctx context.Context, executor ScanExecutor, scanID, scanName string, log zerolog.Logger) *ScanJob {
	return &ScanJob{
		ctx:      ctx,
		executor: executor,
		scanID:   scanID,
		scanName: scanName,
		log:      log.With().Str("job", "scan").Str("scan", scanName).Logger(),
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "scan:" + j.scanName
}

// Run executes the scan. A scan that is already running is not an error.
func (j *ScanJob) Run() error {
	rec, err := j.executor.Execute(j.ctx, j.scanID)
	if errors.Is(err, scan.ErrScanInProgress) {
		j.log.Info().Msg("Scan still running, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("scan %s failed: %w", j.scanName, err)
	}

	j.log.Info().
		Str("completion", string(rec.CompletionStatus)).
		Strs("failed_instruments", rec.FailedInstruments).
		Msg("Scheduled scan finished")

	return nil
}
