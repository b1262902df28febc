// Package classifier evaluates the daily price/volume behavior of a quotation
// against the previous trading day and its moving averages.
package classifier

// Outcome is the result of a predicate: either applicable with a boolean
// value or not applicable because the data needed to decide is missing.
type Outcome struct {
	applicable bool
	value      bool
}

// NotApplicable is the outcome of a predicate that could not be evaluated
var NotApplicable = Outcome{}

// Applicable wraps an evaluated predicate value
func Applicable(value bool) Outcome {
	return Outcome{applicable: true, value: value}
}

// IsApplicable reports whether the predicate could be evaluated
func (o Outcome) IsApplicable() bool {
	return o.applicable
}

// Occurred reports whether the predicate was evaluated and is true
func (o Outcome) Occurred() bool {
	return o.applicable && o.value
}

// Count is 1 for an occurred outcome and 0 otherwise
func (o Outcome) Count() int {
	if o.Occurred() {
		return 1
	}
	return 0
}

// Not negates an applicable outcome and keeps NotApplicable as is
func (o Outcome) Not() Outcome {
	if !o.applicable {
		return o
	}
	return Applicable(!o.value)
}

func (o Outcome) String() string {
	switch {
	case !o.applicable:
		return "not applicable"
	case o.value:
		return "true"
	default:
		return "false"
	}
}
