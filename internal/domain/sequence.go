package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrDuplicateDate is returned when two quotations of a sequence share a calendar day
var ErrDuplicateDate = errors.New("duplicate quotation date")

// ErrMissingQuotationID is returned for a quotation without a positive ID.
// Snapshots are keyed by quotation ID, so a sequence cannot hold such quotations.
var ErrMissingQuotationID = errors.New("quotation has no id")

// Sequence is the quotation history of one instrument, newest first.
// Index 0 is the most recent trading day; higher indexes walk toward older dates.
type Sequence []*Quotation

// NewSequence strips the intraday time from every quotation date, sorts the
// quotations by date descending and rejects two quotations on the same day.
// Every quotation needs a unique positive ID (see Validate).
// The input slice is not modified; the quotations themselves are.
func NewSequence(quotations []*Quotation) (Sequence, error) {
	seq := make(Sequence, 0, len(quotations))
	for _, q := range quotations {
		if q == nil {
			continue
		}
		q.Date = TruncateDate(q.Date)
		seq = append(seq, q)
	}

	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].Date.After(seq[j].Date)
	})

	for i := 1; i < len(seq); i++ {
		if seq[i].Date.Equal(seq[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, seq[i].Date.Format("2006-01-02"))
		}
	}

	if err := seq.Validate(); err != nil {
		return nil, err
	}

	return seq, nil
}

// Validate checks that every quotation carries a positive ID and that no ID
// appears twice.
func (s Sequence) Validate() error {
	seen := make(map[int64]struct{}, len(s))
	for _, q := range s {
		if q.ID <= 0 {
			return fmt.Errorf("%w: %s", ErrMissingQuotationID, q.Date.Format("2006-01-02"))
		}
		if _, ok := seen[q.ID]; ok {
			return fmt.Errorf("duplicate quotation id %d", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// IndexOf returns the index of q in the sequence, matched by ID when set and by
// calendar day otherwise. Returns -1 if q is not part of the sequence.
func (s Sequence) IndexOf(q *Quotation) int {
	if q == nil {
		return -1
	}
	for i, candidate := range s {
		if candidate == q {
			return i
		}
		if q.ID != 0 && candidate.ID == q.ID {
			return i
		}
	}
	if q.ID == 0 {
		return s.IndexOfDate(q.Date)
	}
	return -1
}

// IndexOfDate returns the index of the quotation on the given calendar day, or -1
func (s Sequence) IndexOfDate(date time.Time) int {
	for i, q := range s {
		if SameDay(q.Date, date) {
			return i
		}
	}
	return -1
}

// Latest returns the most recent quotation or nil for an empty sequence
func (s Sequence) Latest() *Quotation {
	if len(s) == 0 {
		return nil
	}
	return s[0]
}

// At returns the quotation at index i or nil when i is out of range
func (s Sequence) At(i int) *Quotation {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Previous returns the trading day before the quotation at index ref, or nil
func (s Sequence) Previous(ref int) *Quotation {
	return s.At(ref + 1)
}

// Remaining is the number of quotations from ref (inclusive) to the oldest entry
func (s Sequence) Remaining(ref int) int {
	if ref < 0 || ref >= len(s) {
		return 0
	}
	return len(s) - ref
}

// Window returns the n quotations starting at ref walking toward older dates.
// ok is false when fewer than n quotations remain.
func (s Sequence) Window(ref, n int) (Sequence, bool) {
	if n <= 0 || s.Remaining(ref) < n {
		return nil, false
	}
	return s[ref : ref+n], true
}

// Closes returns the closing prices of the sequence in sequence order
func (s Sequence) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, q := range s {
		closes[i] = q.Close
	}
	return closes
}

// Since returns the quotations on or after the given day, newest first
func (s Sequence) Since(date time.Time) Sequence {
	day := TruncateDate(date)
	for i, q := range s {
		if q.Date.Before(day) {
			return s[:i]
		}
	}
	return s
}
