package scan

import (
	"testing"

	"github.com/aristath/trendwatch/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReporter_Report(t *testing.T) {
	bus := events.NewBus()
	var received []*events.ScanProgressData
	bus.Subscribe(events.ScanProgress, func(e events.Event) {
		received = append(received, e.Data.(*events.ScanProgressData))
	})

	s := New("scan-1", "nightly", nil)
	require.NoError(t, s.Start())
	metrics := NewMetrics(prometheus.NewRegistry())
	reporter := NewProgressReporter(s, events.NewManager(bus, zerolog.Nop()), metrics)

	assert.Equal(t, 33, reporter.Report(1, 3, "AAPL"))
	// throttled, but the scan still moves
	assert.Equal(t, 67, reporter.Report(2, 3, "MSFT"))
	assert.Equal(t, 67, s.Record().Progress)
	assert.Equal(t, 100, reporter.Report(3, 3, "NVDA"))

	require.Len(t, received, 2)
	assert.Equal(t, 33, received[0].Progress)
	assert.Equal(t, "AAPL", received[0].Symbol)
	assert.Equal(t, 100, received[1].Progress)
	assert.Equal(t, 3, received[1].Processed)
	assert.Equal(t, 100.0, testutil.ToFloat64(metrics.Progress.WithLabelValues("nightly")))
}

func TestProgressReporter_WithoutCollaborators(t *testing.T) {
	s := New("scan-1", "nightly", nil)
	require.NoError(t, s.Start())

	reporter := NewProgressReporter(s, nil, nil)
	assert.Equal(t, 0, reporter.Report(0, 0, ""))
	assert.Equal(t, 50, reporter.Report(1, 2, "AAPL"))
	assert.Equal(t, 50, s.Record().Progress)
}
