package classifier

import (
	"github.com/rs/zerolog"
)

// Classifier evaluates the daily behavior predicates that feed statistics and
// protocols. Failures of the health checker are downgraded to NotApplicable.
type Classifier struct {
	health HealthChecker
	log    zerolog.Logger
}

// New creates a classifier delegating the instrument-health predicates to health
func New(health HealthChecker, log zerolog.Logger) *Classifier {
	return &Classifier{
		health: health,
		log:    log.With().Str("component", "classifier").Logger(),
	}
}

// Advance is true when the close is above the previous close
func (c *Classifier) Advance(d Day) Outcome {
	current, previous := d.Current(), d.Previous()
	if current == nil || previous == nil {
		return NotApplicable
	}
	return Applicable(current.Close > previous.Close)
}

// Decline is true when the close is below the previous close
func (c *Classifier) Decline(d Day) Outcome {
	current, previous := d.Current(), d.Previous()
	if current == nil || previous == nil {
		return NotApplicable
	}
	return Applicable(current.Close < previous.Close)
}

// AboveSma50 compares the close with the SMA50 of the same day
func (c *Classifier) AboveSma50(d Day) Outcome {
	return closeAbove(d, d.MovingAverage.SMA50)
}

// AtOrBelowSma50 is the complement of AboveSma50 for an available SMA50
func (c *Classifier) AtOrBelowSma50(d Day) Outcome {
	return closeAbove(d, d.MovingAverage.SMA50).Not()
}

// AboveSma200 compares the close with the SMA200 of the same day
func (c *Classifier) AboveSma200(d Day) Outcome {
	return closeAbove(d, d.MovingAverage.SMA200)
}

// AtOrBelowSma200 is the complement of AboveSma200 for an available SMA200
func (c *Classifier) AtOrBelowSma200(d Day) Outcome {
	return closeAbove(d, d.MovingAverage.SMA200).Not()
}

func closeAbove(d Day, average float64) Outcome {
	current := d.Current()
	if current == nil || average == 0 {
		return NotApplicable
	}
	return Applicable(current.Close > average)
}

// RitterMarketTrend returns +1 for a rise on at least average volume or a fall
// on below-average volume, -1 for a rise on below-average volume or a fall on
// at least average volume, and 0 for an unchanged close or missing data.
func (c *Classifier) RitterMarketTrend(d Day) int {
	current, previous := d.Current(), d.Previous()
	averageVolume := d.MovingAverage.SMA30Volume
	if current == nil || previous == nil || averageVolume == 0 {
		return 0
	}

	heavy := current.Volume >= averageVolume
	switch {
	case current.Close > previous.Close:
		if heavy {
			return 1
		}
		return -1
	case current.Close < previous.Close:
		if heavy {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// UpOnVolume delegates to the health checker
func (c *Classifier) UpOnVolume(d Day) Outcome {
	return c.delegate("up_on_volume", d, c.health.UpOnVolume)
}

// DownOnVolume delegates to the health checker
func (c *Classifier) DownOnVolume(d Day) Outcome {
	return c.delegate("down_on_volume", d, c.health.DownOnVolume)
}

// BullishReversal delegates to the health checker
func (c *Classifier) BullishReversal(d Day) Outcome {
	return c.delegate("bullish_reversal", d, c.health.BullishReversal)
}

// BearishReversal delegates to the health checker
func (c *Classifier) BearishReversal(d Day) Outcome {
	return c.delegate("bearish_reversal", d, c.health.BearishReversal)
}

// Churning delegates to the health checker
func (c *Classifier) Churning(d Day) Outcome {
	return c.delegate("churning", d, c.health.Churning)
}

// DistributionDay delegates to the health checker
func (c *Classifier) DistributionDay(d Day) Outcome {
	return c.delegate("distribution_day", d, c.health.DistributionDay)
}

// FollowThroughDay delegates to the health checker
func (c *Classifier) FollowThroughDay(d Day) Outcome {
	return c.delegate("follow_through_day", d, c.health.FollowThroughDay)
}

// PocketPivot delegates to the health checker
func (c *Classifier) PocketPivot(d Day) Outcome {
	return c.delegate("pocket_pivot", d, c.health.PocketPivot)
}

// GoodClose delegates to the health checker
func (c *Classifier) GoodClose(d Day) Outcome {
	return c.delegate("good_close", d, c.health.GoodClose)
}

// BadClose delegates to the health checker
func (c *Classifier) BadClose(d Day) Outcome {
	return c.delegate("bad_close", d, c.health.BadClose)
}

// CloseAboveEma21 delegates to the health checker
func (c *Classifier) CloseAboveEma21(d Day) Outcome {
	return c.delegate("close_above_ema21", d, c.health.CloseAboveEma21)
}

// CloseAboveSma50 delegates to the health checker
func (c *Classifier) CloseAboveSma50(d Day) Outcome {
	return c.delegate("close_above_sma50", d, c.health.CloseAboveSma50)
}

// Extended delegates to the health checker
func (c *Classifier) Extended(d Day) Outcome {
	return c.delegate("extended", d, c.health.Extended)
}

func (c *Classifier) delegate(predicate string, d Day, fn func(Day) (bool, error)) Outcome {
	occurred, err := fn(d)
	if err != nil {
		event := c.log.Debug().Err(err).Str("predicate", predicate)
		if current := d.Current(); current != nil {
			event = event.
				Int64("instrument_id", current.InstrumentID).
				Time("date", current.Date)
		}
		event.Msg("Predicate not applicable")
		return NotApplicable
	}
	return Applicable(occurred)
}
