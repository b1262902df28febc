// Package statistics aggregates the daily behavior of an instrument universe
// into one Statistic per (date, universe). A universe is either an instrument
// type or, for type LIST, one explicit instrument list.
package statistics

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/pkg/formulas"
)

var (
	// ErrDuplicateStatistic is returned when a statistic for the same date and universe exists
	ErrDuplicateStatistic = errors.New("statistic already exists for date and universe")
	// ErrStatisticNotFound is returned when updating or reading a missing statistic
	ErrStatisticNotFound = errors.New("statistic not found")
	// ErrInvalidUniverse is returned when a LIST statistic has no list ID or a type statistic has one
	ErrInvalidUniverse = errors.New("invalid statistic universe")
)

// Statistic holds the summed daily behavior of a universe on one date
type Statistic struct {
	Date                    time.Time             `json:"date"`
	ID                      string                `json:"id"`
	UniverseType            domain.InstrumentType `json:"universe_type"`
	ListID                  int64                 `json:"list_id,omitempty"`
	NumberAdvance           int                   `json:"number_advance"`
	NumberDecline           int                   `json:"number_decline"`
	NumberAboveSma50        int                   `json:"number_above_sma50"`
	NumberAtOrBelowSma50    int                   `json:"number_at_or_below_sma50"`
	NumberAboveSma200       int                   `json:"number_above_sma200"`
	NumberAtOrBelowSma200   int                   `json:"number_at_or_below_sma200"`
	NumberRitterMarketTrend int                   `json:"number_ritter_market_trend"`
	NumberUpOnVolume        int                   `json:"number_up_on_volume"`
	NumberDownOnVolume      int                   `json:"number_down_on_volume"`
	NumberBearishReversal   int                   `json:"number_bearish_reversal"`
	NumberBullishReversal   int                   `json:"number_bullish_reversal"`
	NumberChurning          int                   `json:"number_churning"`
	NumberOfInstruments     int                   `json:"number_of_instruments"`
}

// PercentAboveSma50 is round_half_up(100*above/(above+atOrBelow)), 0 without data
func (s *Statistic) PercentAboveSma50() int {
	return formulas.Percent(s.NumberAboveSma50, s.NumberAboveSma50+s.NumberAtOrBelowSma50)
}

// PercentAboveSma200 is round_half_up(100*above/(above+atOrBelow)), 0 without data
func (s *Statistic) PercentAboveSma200() int {
	return formulas.Percent(s.NumberAboveSma200, s.NumberAboveSma200+s.NumberAtOrBelowSma200)
}

// AdvanceDeclineSum is the number of advancing minus declining instruments
func (s *Statistic) AdvanceDeclineSum() int {
	return s.NumberAdvance - s.NumberDecline
}

// MarshalJSON adds the derived percentages to the stored counters
func (s Statistic) MarshalJSON() ([]byte, error) {
	type stored Statistic
	return json.Marshal(struct {
		stored
		PercentAboveSma50  int `json:"percent_above_sma50"`
		PercentAboveSma200 int `json:"percent_above_sma200"`
	}{
		stored:             stored(s),
		PercentAboveSma50:  s.PercentAboveSma50(),
		PercentAboveSma200: s.PercentAboveSma200(),
	})
}

func (s *Statistic) validateUniverse() error {
	if s.UniverseType == domain.InstrumentTypeList && s.ListID <= 0 {
		return fmt.Errorf("%w: LIST statistic without list id", ErrInvalidUniverse)
	}
	if s.UniverseType != domain.InstrumentTypeList && s.ListID != 0 {
		return fmt.Errorf("%w: %s statistic with list id %d", ErrInvalidUniverse, s.UniverseType, s.ListID)
	}
	return nil
}
