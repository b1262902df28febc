package scan

import (
	"sync"
	"time"

	"github.com/aristath/trendwatch/internal/events"
	"github.com/aristath/trendwatch/pkg/formulas"
)

// Throttle interval for progress events
const progressThrottleInterval = 250 * time.Millisecond

// ProgressReporter records the progress of a run on its scan and emits
// throttled ScanProgress events. The scan itself is always updated.
type ProgressReporter struct {
	scan    *Scan
	events  *events.Manager
	metrics *Metrics

	lastReport time.Time
	mu         sync.Mutex
}

// NewProgressReporter creates a reporter for one run of s. Events and metrics may be nil.
func NewProgressReporter(s *Scan, em *events.Manager, metrics *Metrics) *ProgressReporter {
	return &ProgressReporter{
		scan:    s,
		events:  em,
		metrics: metrics,
	}
}

// Report records that processed of total instruments are done. The last
// instrument is always reported.
func (r *ProgressReporter) Report(processed, total int, symbol string) int {
	progress := formulas.Percent(processed, total)
	r.scan.SetProgress(progress)
	if r.metrics != nil {
		r.metrics.Progress.WithLabelValues(r.scan.Name).Set(float64(progress))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if processed < total && time.Since(r.lastReport) < progressThrottleInterval {
		return progress
	}
	r.lastReport = time.Now()

	if r.events != nil {
		r.events.EmitTyped("scan", &events.ScanProgressData{
			ScanID:    r.scan.ID,
			Progress:  progress,
			Processed: processed,
			Total:     total,
			Symbol:    symbol,
		})
	}
	return progress
}
