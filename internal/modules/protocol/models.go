// Package protocol walks the quotation history of an instrument and records,
// per day, which health checks confirmed or violated its trend.
package protocol

import "time"

// Category classifies a protocol entry
type Category string

const (
	CategoryConfirmation Category = "CONFIRMATION"
	CategoryViolation    Category = "VIOLATION"
	CategoryUncertain    Category = "UNCERTAIN"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryConfirmation, CategoryViolation, CategoryUncertain:
		return true
	}
	return false
}

// Profile names a set of checks
type Profile string

const (
	ProfileConfirmations       Profile = "CONFIRMATIONS"
	ProfileSellingIntoWeakness Profile = "SELLING_INTO_WEAKNESS"
	ProfileSellingIntoStrength Profile = "SELLING_INTO_STRENGTH"
	// ProfileAll evaluates every other profile
	ProfileAll Profile = "ALL"
)

// ProtocolEntry records one check that occurred on a date
type ProtocolEntry struct {
	Date     time.Time `json:"date"`
	Category Category  `json:"category"`
	Profile  Profile   `json:"profile"`
	Text     string    `json:"text"`
}

// SimpleProtocolEntry is a ProtocolEntry without date and profile
type SimpleProtocolEntry struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// DateBasedProtocolEntry groups the entries of one date with the share of
// every category. Integer rounding may leave the shares short of 100.
type DateBasedProtocolEntry struct {
	Date                time.Time             `json:"date"`
	Entries             []SimpleProtocolEntry `json:"entries"`
	PercentConfirmation int                   `json:"percent_confirmation"`
	PercentViolation    int                   `json:"percent_violation"`
	PercentUncertain    int                   `json:"percent_uncertain"`
}
