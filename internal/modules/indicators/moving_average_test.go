package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleMovingAverage(t *testing.T) {
	// closes oldest to newest: 100, 102, 99, 101, 103
	seq := sequenceOf(103, 101, 99, 102, 100)

	tests := []struct {
		name     string
		period   int
		ref      int
		expected float64
	}{
		{"period 3 from newest", 3, 0, 101.000},
		{"period 5 from newest", 5, 0, 101.000},
		{"period 3 from middle", 3, 2, 100.333},
		{"period 2 from older reference", 2, 3, 101.000},
		{"insufficient history", 3, 3, 0},
		{"reference beyond sequence", 3, 7, 0},
		{"zero period", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SimpleMovingAverage(tt.period, tt.ref, seq))
		})
	}
}

func TestSimpleMovingAverage_RoundsHalfUp(t *testing.T) {
	seq := sequenceOf(10.0015, 10.0)
	// (10.0015 + 10.0) / 2 = 10.00075
	assert.Equal(t, 10.001, SimpleMovingAverage(2, 0, seq))
}

func TestExponentialMovingAverage(t *testing.T) {
	seq := sequenceOf(103, 101, 99, 102, 100)

	tests := []struct {
		name     string
		period   int
		ref      int
		expected float64
	}{
		{"full warm-up period available", 2, 0, 102.278},
		{"partial warm-up anchors at oldest full window", 3, 0, 101.833},
		{"partial warm-up with single step", 4, 0, 101.5},
		{"exactly period remaining equals SMA", 3, 2, 100.333},
		{"insufficient history", 3, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExponentialMovingAverage(tt.period, tt.ref, seq))
		})
	}
}

func TestExponentialMovingAverage_EqualsSMAWhenExactlyPeriodRemains(t *testing.T) {
	seq := sequenceOf(12.5, 13.25, 11.75, 12.0, 14.5, 13.0)
	for period := 1; period <= len(seq); period++ {
		ref := len(seq) - period
		assert.Equal(t, SimpleMovingAverage(period, ref, seq), ExponentialMovingAverage(period, ref, seq), "period %d", period)
	}
}

func TestSimpleMovingAverageVolume(t *testing.T) {
	seq := sequenceOf(103, 101, 99)
	seq[0].Volume = 1000
	seq[1].Volume = 2001
	seq[2].Volume = 3000

	assert.Equal(t, int64(2000), SimpleMovingAverageVolume(3, 0, seq))
	// (1000 + 2001) / 2 = 1500.5
	assert.Equal(t, int64(1501), SimpleMovingAverageVolume(2, 0, seq))
	assert.Equal(t, int64(0), SimpleMovingAverageVolume(4, 0, seq))
}
