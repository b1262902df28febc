// Package history stores instruments, instrument lists and their daily
// quotations, and feeds them to the scan as quotation sequences.
package history

import (
	"errors"

	"github.com/aristath/trendwatch/internal/domain"
)

// ErrInstrumentNotFound is returned for an unknown instrument ID or symbol
var ErrInstrumentNotFound = errors.New("instrument not found")

// InstrumentSource lists the instruments of a scan
type InstrumentSource interface {
	// ListInstruments returns the distinct members of the given lists
	// ordered by symbol. Without list IDs every instrument is returned.
	ListInstruments(listIDs ...int64) ([]*domain.Instrument, error)
}

// QuotationSource loads the quotation history of one instrument
type QuotationSource interface {
	// Quotations returns the full history of the instrument, newest first
	Quotations(instrumentID int64) (domain.Sequence, error)
}
