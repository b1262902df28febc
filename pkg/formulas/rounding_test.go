package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		places   int32
		expected float64
	}{
		{"tie rounds up", 101.0005, 3, 101.001},
		{"binary tie still rounds up", 2.675, 2, 2.68},
		{"below tie rounds down", 1.2344, 3, 1.234},
		{"negative tie rounds away from zero", -1.125, 2, -1.13},
		{"already exact", 101, 3, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundHalfUp(tt.value, tt.places))
		})
	}
}

func TestRoundHalfUpInt(t *testing.T) {
	assert.Equal(t, int64(3), RoundHalfUpInt(2.5))
	assert.Equal(t, int64(2), RoundHalfUpInt(2.49))
	assert.Equal(t, int64(-3), RoundHalfUpInt(-2.5))
}

func TestAverage(t *testing.T) {
	t.Run("exact decimal sum", func(t *testing.T) {
		assert.Equal(t, 101.0, Average([]float64{103, 101, 99}, 3, 3))
		assert.Equal(t, 0.3, Average([]float64{0.1, 0.2, 0.6}, 3, 3))
	})

	t.Run("rounds half up", func(t *testing.T) {
		// 100.0015 at 3 dp
		assert.Equal(t, 100.002, Average([]float64{100.001, 100.002}, 2, 3))
	})

	t.Run("non-positive divisor", func(t *testing.T) {
		assert.Equal(t, 0.0, Average([]float64{1, 2}, 0, 3))
	})
}

func TestAverageInt(t *testing.T) {
	assert.Equal(t, int64(2), AverageInt([]int64{1, 2, 2}, 3))
	assert.Equal(t, int64(3), AverageInt([]int64{2, 3}, 2))
	assert.Equal(t, int64(0), AverageInt(nil, 0))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, whole, expected int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13},
		{0, 5, 0},
		{5, 5, 100},
		{3, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Percent(tt.part, tt.whole), "%d/%d", tt.part, tt.whole)
	}
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 10.0, PercentChange(110, 100, 2))
	assert.Equal(t, -33.33, PercentChange(2, 3, 2))
	assert.Equal(t, 0.0, PercentChange(5, 0, 2))
}
