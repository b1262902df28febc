package classifier

import (
	"errors"
	"testing"

	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestClassifier_AdvanceDecline(t *testing.T) {
	c := New(NewHealth(DefaultHealthConfig()), zerolog.Nop())
	none := snapshots.MovingAverage{}

	up := dayOf(none, flatBar(101, 0), flatBar(100, 0))
	assert.Equal(t, Applicable(true), c.Advance(up))
	assert.Equal(t, Applicable(false), c.Decline(up))

	down := dayOf(none, flatBar(99, 0), flatBar(100, 0))
	assert.Equal(t, Applicable(false), c.Advance(down))
	assert.Equal(t, Applicable(true), c.Decline(down))

	unchanged := dayOf(none, flatBar(100, 0), flatBar(100, 0))
	assert.Equal(t, Applicable(false), c.Advance(unchanged))
	assert.Equal(t, Applicable(false), c.Decline(unchanged))

	first := dayOf(none, flatBar(100, 0))
	assert.Equal(t, NotApplicable, c.Advance(first))
	assert.Equal(t, NotApplicable, c.Decline(first))
}

func TestClassifier_MovingAverageComparisons(t *testing.T) {
	c := New(NewHealth(DefaultHealthConfig()), zerolog.Nop())

	tests := []struct {
		name         string
		close        float64
		ma           snapshots.MovingAverage
		above50      Outcome
		atOrBelow50  Outcome
		above200     Outcome
		atOrBelow200 Outcome
	}{
		{
			name:         "above both",
			close:        110,
			ma:           snapshots.MovingAverage{SMA50: 105, SMA200: 100},
			above50:      Applicable(true),
			atOrBelow50:  Applicable(false),
			above200:     Applicable(true),
			atOrBelow200: Applicable(false),
		},
		{
			name:         "exactly at SMA50 counts as at or below",
			close:        105,
			ma:           snapshots.MovingAverage{SMA50: 105, SMA200: 100},
			above50:      Applicable(false),
			atOrBelow50:  Applicable(true),
			above200:     Applicable(true),
			atOrBelow200: Applicable(false),
		},
		{
			name:         "unavailable averages are neutral",
			close:        105,
			ma:           snapshots.MovingAverage{},
			above50:      NotApplicable,
			atOrBelow50:  NotApplicable,
			above200:     NotApplicable,
			atOrBelow200: NotApplicable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dayOf(tt.ma, flatBar(tt.close, 0))
			assert.Equal(t, tt.above50, c.AboveSma50(d))
			assert.Equal(t, tt.atOrBelow50, c.AtOrBelowSma50(d))
			assert.Equal(t, tt.above200, c.AboveSma200(d))
			assert.Equal(t, tt.atOrBelow200, c.AtOrBelowSma200(d))
		})
	}
}

func TestClassifier_RitterMarketTrend(t *testing.T) {
	c := New(NewHealth(DefaultHealthConfig()), zerolog.Nop())
	ma := snapshots.MovingAverage{SMA30Volume: 1000}

	tests := []struct {
		name     string
		current  bar
		ma       snapshots.MovingAverage
		expected int
	}{
		{"rise on average volume", flatBar(101, 1000), ma, 1},
		{"rise on light volume", flatBar(101, 999), ma, -1},
		{"fall on heavy volume", flatBar(99, 1500), ma, -1},
		{"fall on light volume", flatBar(99, 500), ma, 1},
		{"unchanged price", flatBar(100, 5000), ma, 0},
		{"volume average unavailable", flatBar(101, 5000), snapshots.MovingAverage{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dayOf(tt.ma, tt.current, flatBar(100, 1000))
			assert.Equal(t, tt.expected, c.RitterMarketTrend(d))
		})
	}

	assert.Equal(t, 0, c.RitterMarketTrend(dayOf(ma, flatBar(101, 1000))), "no previous day")
}

func TestClassifier_DelegatesToHealthChecker(t *testing.T) {
	health := new(mockHealthChecker)
	c := New(health, zerolog.Nop())
	d := dayOf(snapshots.MovingAverage{}, flatBar(101, 100), flatBar(100, 100))

	health.On("UpOnVolume", d).Return(true, nil).Once()
	health.On("DownOnVolume", d).Return(false, nil).Once()
	health.On("Churning", d).Return(false, errors.New("volume feed gap")).Once()
	health.On("BullishReversal", d).Return(false, ErrMissingMovingAverage).Once()

	assert.Equal(t, Applicable(true), c.UpOnVolume(d))
	assert.Equal(t, Applicable(false), c.DownOnVolume(d))
	assert.Equal(t, NotApplicable, c.Churning(d), "collaborator failure is downgraded")
	assert.Equal(t, 0, c.BullishReversal(d).Count())

	health.AssertExpectations(t)
}

func TestClassifier_AllDelegatesSwallowErrors(t *testing.T) {
	health := new(mockHealthChecker)
	c := New(health, zerolog.Nop())
	d := dayOf(snapshots.MovingAverage{}, flatBar(100, 1))

	predicates := map[string]func(Day) Outcome{
		"UpOnVolume":       c.UpOnVolume,
		"DownOnVolume":     c.DownOnVolume,
		"BullishReversal":  c.BullishReversal,
		"BearishReversal":  c.BearishReversal,
		"Churning":         c.Churning,
		"DistributionDay":  c.DistributionDay,
		"FollowThroughDay": c.FollowThroughDay,
		"PocketPivot":      c.PocketPivot,
		"GoodClose":        c.GoodClose,
		"BadClose":         c.BadClose,
		"CloseAboveEma21":  c.CloseAboveEma21,
		"CloseAboveSma50":  c.CloseAboveSma50,
		"Extended":         c.Extended,
	}

	for name := range predicates {
		health.On(name, mock.Anything).Return(false, errors.New("boom"))
	}

	for name, predicate := range predicates {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, NotApplicable, predicate(d))
		})
	}
}

func TestNewDay(t *testing.T) {
	d := dayOf(snapshots.MovingAverage{}, flatBar(101, 1), flatBar(100, 1))
	table := snapshots.NewTable()
	table.SetMovingAverage(d.Sequence[0].ID, snapshots.MovingAverage{SMA50: 95})

	loaded := NewDay(d.Sequence, 0, table)
	assert.Equal(t, 95.0, loaded.MovingAverage.SMA50)
	assert.Equal(t, 100.0, loaded.Previous().Close)

	missing := NewDay(d.Sequence, 1, table)
	assert.Equal(t, snapshots.MovingAverage{}, missing.MovingAverage)
	assert.Nil(t, missing.Previous())

	assert.Nil(t, NewDay(d.Sequence, 5, nil).Current())
}
