package classifier

import (
	"errors"
	"math"

	"github.com/aristath/trendwatch/internal/domain"
)

var (
	// ErrMissingQuotation is returned when the evaluated day is outside the sequence
	ErrMissingQuotation = errors.New("quotation not available")
	// ErrMissingPrevious is returned when the previous trading day is required but absent
	ErrMissingPrevious = errors.New("previous quotation not available")
	// ErrMissingMovingAverage is returned when a required average was not computable
	ErrMissingMovingAverage = errors.New("moving average not available")
	// ErrInsufficientHistory is returned when a lookback window is not fully available
	ErrInsufficientHistory = errors.New("insufficient quotation history")
	// ErrNoRange is returned for a day whose high equals its low
	ErrNoRange = errors.New("quotation has no intraday range")
)

// HealthChecker evaluates instrument-health predicates for one day.
// An error means the predicate cannot be decided for that day.
type HealthChecker interface {
	UpOnVolume(d Day) (bool, error)
	DownOnVolume(d Day) (bool, error)
	BullishReversal(d Day) (bool, error)
	BearishReversal(d Day) (bool, error)
	Churning(d Day) (bool, error)
	DistributionDay(d Day) (bool, error)
	FollowThroughDay(d Day) (bool, error)
	PocketPivot(d Day) (bool, error)
	GoodClose(d Day) (bool, error)
	BadClose(d Day) (bool, error)
	CloseAboveEma21(d Day) (bool, error)
	CloseAboveSma50(d Day) (bool, error)
	Extended(d Day) (bool, error)
}

// HealthConfig holds the thresholds of the default health predicates.
// Percentages are expressed in percent (0.2 means 0.2%).
type HealthConfig struct {
	VolumeFactor          float64 // volume vs. SMA30 volume for "on volume" days
	DistributionDecline   float64 // minimum close decline of a distribution day
	FollowThroughGain     float64 // minimum close gain of a follow-through day
	FollowThroughMinDay   int     // earliest rally day counting as follow-through
	FollowThroughLookback int     // sessions searched for the rally low
	ChurningVolumeFactor  float64 // volume vs. SMA30 volume of a churning day
	ChurningMaxMove       float64 // maximum absolute close change of a churning day
	PocketPivotLookback   int     // sessions whose down-day volume must be exceeded
	GoodCloseRatio        float64 // minimum position of the close within the range
	BadCloseRatio         float64 // maximum position of the close within the range
	ExtendedPercent       float64 // distance above SMA50 counting as extended
}

// DefaultHealthConfig returns the standard thresholds
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		VolumeFactor:          1.25,
		DistributionDecline:   0.2,
		FollowThroughGain:     1.7,
		FollowThroughMinDay:   4,
		FollowThroughLookback: 25,
		ChurningVolumeFactor:  1.25,
		ChurningMaxMove:       0.5,
		PocketPivotLookback:   10,
		GoodCloseRatio:        0.6,
		BadCloseRatio:         0.4,
		ExtendedPercent:       20,
	}
}

// Health is the default HealthChecker
type Health struct {
	cfg HealthConfig
}

// NewHealth creates the default health checker
func NewHealth(cfg HealthConfig) *Health {
	return &Health{cfg: cfg}
}

func pair(d Day) (*domain.Quotation, *domain.Quotation, error) {
	current := d.Current()
	if current == nil {
		return nil, nil, ErrMissingQuotation
	}
	previous := d.Previous()
	if previous == nil {
		return nil, nil, ErrMissingPrevious
	}
	return current, previous, nil
}

// changePercent is the close change against the previous close in percent
func changePercent(current, previous *domain.Quotation) float64 {
	if previous.Close == 0 {
		return 0
	}
	return (current.Close - previous.Close) / previous.Close * 100
}

func (h *Health) heavyVolume(d Day, volume int64, factor float64) (bool, error) {
	average := d.MovingAverage.SMA30Volume
	if average == 0 {
		return false, ErrMissingMovingAverage
	}
	return float64(volume) >= float64(average)*factor, nil
}

// UpOnVolume is a higher close on volume at least VolumeFactor times the average
func (h *Health) UpOnVolume(d Day) (bool, error) {
	current, previous, err := pair(d)
	if err != nil {
		return false, err
	}
	heavy, err := h.heavyVolume(d, current.Volume, h.cfg.VolumeFactor)
	if err != nil {
		return false, err
	}
	return current.Close > previous.Close && heavy, nil
}

// DownOnVolume is a lower close on volume at least VolumeFactor times the average
func (h *Health) DownOnVolume(d Day) (bool, error) {
	current, previous, err := pair(d)
	if err != nil {
		return false, err
	}
	heavy, err := h.heavyVolume(d, current.Volume, h.cfg.VolumeFactor)
	if err != nil {
		return false, err
	}
	return current.Close < previous.Close && heavy, nil
}

// BullishReversal undercuts the previous low, closes above the previous close
// and trades heavy volume.
func (h *Health) BullishReversal(d Day) (bool, error) {
	current, previous, err := pair(d)
	if err != nil {
		return false, err
	}
	heavy, err := h.heavyVolume(d, current.Volume, h.cfg.VolumeFactor)
	if err != nil {
		return false, err
	}
	return current.Low < previous.Low && current.Close > previous.Close && heavy, nil
}

// BearishReversal exceeds the previous high, closes below the previous close
// and trades heavy volume.
func (h *Health) BearishReversal(d Day) (bool, error) {
	current, previous, err := pair(d)
	if err != nil {
		return false, err
	}
	heavy, err := h.heavyVolume(d, current.Volume, h.cfg.VolumeFactor)
	if err != nil {
		return false, err
	}
	return current.High > previous.High && current.Close < previous.Close && heavy, nil
}

// Churning is heavy volume without meaningful price progress
func (h *Health) Churning(d Day) (bool, error) {
	current, previous, err := pair(d)
	if err != nil {
		return false, err
	}
	heavy, err := h.heavyVolume(d, current.Volume, h.cfg.ChurningVolumeFactor)
	if err != nil {
		return false, err
	}
	return heavy && math.Abs(changePercent(current, previous)) <= h.cfg.ChurningMaxMove, nil
}

// DistributionDay is a close decline of at least DistributionDecline percent on
// higher volume than the previous day.
func (h *Health) DistributionDay(d Day) (bool, error) {
	current, previous, err := pair(d)
	if err != nil {
		return false, err
	}
	return changePercent(current, previous) <= -h.cfg.DistributionDecline &&
		current.Volume > previous.Volume, nil
}

// FollowThroughDay is a close gain of at least FollowThroughGain percent on
// higher volume, occurring on or after day FollowThroughMinDay of a rally that
// started at the lowest low of the lookback.
func (h *Health) FollowThroughDay(d Day) (bool, error) {
	current, previous, err := pair(d)
	if err != nil {
		return false, err
	}
	if d.Sequence.Remaining(d.Index) < h.cfg.FollowThroughMinDay {
		return false, ErrInsufficientHistory
	}

	lookback := h.cfg.FollowThroughLookback
	if remaining := d.Sequence.Remaining(d.Index); remaining < lookback {
		lookback = remaining
	}
	lowIndex := d.Index
	for i := d.Index; i < d.Index+lookback; i++ {
		if d.Sequence[i].Low < d.Sequence[lowIndex].Low {
			lowIndex = i
		}
	}
	rallyDay := lowIndex - d.Index + 1

	return rallyDay >= h.cfg.FollowThroughMinDay &&
		changePercent(current, previous) >= h.cfg.FollowThroughGain &&
		current.Volume > previous.Volume, nil
}

// PocketPivot is an up day whose volume exceeds the volume of every down day
// within the previous PocketPivotLookback sessions.
func (h *Health) PocketPivot(d Day) (bool, error) {
	current, previous, err := pair(d)
	if err != nil {
		return false, err
	}
	lookback := h.cfg.PocketPivotLookback
	// every lookback session needs its own previous day
	if d.Sequence.Remaining(d.Index) < lookback+2 {
		return false, ErrInsufficientHistory
	}
	if current.Close <= previous.Close {
		return false, nil
	}

	for i := d.Index + 1; i <= d.Index+lookback; i++ {
		day, before := d.Sequence[i], d.Sequence[i+1]
		if day.Close < before.Close && day.Volume >= current.Volume {
			return false, nil
		}
	}
	return true, nil
}

func closePosition(q *domain.Quotation) (float64, error) {
	if q.High == q.Low {
		return 0, ErrNoRange
	}
	return (q.Close - q.Low) / (q.High - q.Low), nil
}

// GoodClose closes in the upper part of the intraday range
func (h *Health) GoodClose(d Day) (bool, error) {
	current := d.Current()
	if current == nil {
		return false, ErrMissingQuotation
	}
	position, err := closePosition(current)
	if err != nil {
		return false, err
	}
	return position >= h.cfg.GoodCloseRatio, nil
}

// BadClose closes in the lower part of the intraday range
func (h *Health) BadClose(d Day) (bool, error) {
	current := d.Current()
	if current == nil {
		return false, ErrMissingQuotation
	}
	position, err := closePosition(current)
	if err != nil {
		return false, err
	}
	return position <= h.cfg.BadCloseRatio, nil
}

func closeAboveAverage(d Day, average float64) (bool, error) {
	current := d.Current()
	if current == nil {
		return false, ErrMissingQuotation
	}
	if average == 0 {
		return false, ErrMissingMovingAverage
	}
	return current.Close > average, nil
}

// CloseAboveEma21 compares the close with the EMA21
func (h *Health) CloseAboveEma21(d Day) (bool, error) {
	return closeAboveAverage(d, d.MovingAverage.EMA21)
}

// CloseAboveSma50 compares the close with the SMA50
func (h *Health) CloseAboveSma50(d Day) (bool, error) {
	return closeAboveAverage(d, d.MovingAverage.SMA50)
}

// Extended is a close at least ExtendedPercent above the SMA50
func (h *Health) Extended(d Day) (bool, error) {
	current := d.Current()
	if current == nil {
		return false, ErrMissingQuotation
	}
	sma50 := d.MovingAverage.SMA50
	if sma50 == 0 {
		return false, ErrMissingMovingAverage
	}
	return (current.Close-sma50)/sma50*100 >= h.cfg.ExtendedPercent, nil
}
