package protocol

import (
	"fmt"
	"sort"

	"github.com/aristath/trendwatch/internal/modules/classifier"
)

// Predicate evaluates one day with the classifier
type Predicate func(c *classifier.Classifier, d classifier.Day) classifier.Outcome

// Check maps the occurrence of a predicate to a category and rationale
type Check struct {
	Predicate string   `yaml:"predicate"`
	Category  Category `yaml:"category"`
	Text      string   `yaml:"text"`
}

func negate(p Predicate) Predicate {
	return func(c *classifier.Classifier, d classifier.Day) classifier.Outcome {
		return p(c, d).Not()
	}
}

var (
	closeAboveEma21 Predicate = (*classifier.Classifier).CloseAboveEma21
	closeAboveSma50 Predicate = (*classifier.Classifier).CloseAboveSma50
)

// predicates lists every predicate a check may reference
var predicates = map[string]Predicate{
	"advance":            (*classifier.Classifier).Advance,
	"decline":            (*classifier.Classifier).Decline,
	"above_sma200":       (*classifier.Classifier).AboveSma200,
	"at_or_below_sma200": (*classifier.Classifier).AtOrBelowSma200,
	"up_on_volume":       (*classifier.Classifier).UpOnVolume,
	"down_on_volume":     (*classifier.Classifier).DownOnVolume,
	"bullish_reversal":   (*classifier.Classifier).BullishReversal,
	"bearish_reversal":   (*classifier.Classifier).BearishReversal,
	"churning":           (*classifier.Classifier).Churning,
	"distribution_day":   (*classifier.Classifier).DistributionDay,
	"follow_through_day": (*classifier.Classifier).FollowThroughDay,
	"pocket_pivot":       (*classifier.Classifier).PocketPivot,
	"good_close":         (*classifier.Classifier).GoodClose,
	"bad_close":          (*classifier.Classifier).BadClose,
	"extended":           (*classifier.Classifier).Extended,
	"close_above_ema21":  closeAboveEma21,
	"close_below_ema21":  negate(closeAboveEma21),
	"close_above_sma50":  closeAboveSma50,
	"close_below_sma50":  negate(closeAboveSma50),
}

// PredicateNames returns the names checks may reference, sorted
func PredicateNames() []string {
	names := make([]string, 0, len(predicates))
	for name := range predicates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports an unknown predicate or category
func (c Check) Validate() error {
	if _, ok := predicates[c.Predicate]; !ok {
		return fmt.Errorf("unknown predicate %q", c.Predicate)
	}
	if !c.Category.Valid() {
		return fmt.Errorf("unknown category %q for predicate %q", c.Category, c.Predicate)
	}
	return nil
}

// Profiles maps a profile to its checks. ProfileAll is derived, never stored.
type Profiles map[Profile][]Check

// DefaultProfiles returns the built-in check sets
func DefaultProfiles() Profiles {
	return Profiles{
		ProfileConfirmations: {
			{Predicate: "follow_through_day", Category: CategoryConfirmation, Text: "Follow-through day: strong gain on higher volume early in a rally"},
			{Predicate: "up_on_volume", Category: CategoryConfirmation, Text: "Close up on above-average volume"},
			{Predicate: "pocket_pivot", Category: CategoryConfirmation, Text: "Pocket pivot: up-day volume above every down day of the last ten sessions"},
			{Predicate: "bullish_reversal", Category: CategoryConfirmation, Text: "Bullish high-volume reversal"},
			{Predicate: "good_close", Category: CategoryConfirmation, Text: "Close in the upper part of the daily range"},
			{Predicate: "close_above_ema21", Category: CategoryConfirmation, Text: "Close above the 21-day EMA"},
		},
		ProfileSellingIntoWeakness: {
			{Predicate: "distribution_day", Category: CategoryViolation, Text: "Distribution day: decline on higher volume"},
			{Predicate: "down_on_volume", Category: CategoryViolation, Text: "Close down on above-average volume"},
			{Predicate: "close_below_sma50", Category: CategoryViolation, Text: "Close below the 50-day SMA"},
			{Predicate: "close_below_ema21", Category: CategoryUncertain, Text: "Close below the 21-day EMA"},
			{Predicate: "bad_close", Category: CategoryUncertain, Text: "Close in the lower part of the daily range"},
		},
		ProfileSellingIntoStrength: {
			{Predicate: "extended", Category: CategoryUncertain, Text: "Extended far above the 50-day SMA"},
			{Predicate: "churning", Category: CategoryUncertain, Text: "Churning: heavy volume without price progress"},
			{Predicate: "bearish_reversal", Category: CategoryViolation, Text: "Bearish high-volume reversal"},
		},
	}
}

// profileOrder is the evaluation order of ProfileAll
var profileOrder = []Profile{ProfileConfirmations, ProfileSellingIntoWeakness, ProfileSellingIntoStrength}
