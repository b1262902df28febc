// Package domain provides core domain models and types.
package domain

import "time"

// Currency represents a currency code
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
)

// InstrumentType classifies an instrument and doubles as the universe key of a Statistic
type InstrumentType string

const (
	InstrumentTypeStock         InstrumentType = "STOCK"
	InstrumentTypeETF           InstrumentType = "ETF"
	InstrumentTypeSector        InstrumentType = "SECTOR"
	InstrumentTypeIndustryGroup InstrumentType = "INDUSTRY_GROUP"
	// InstrumentTypeList marks a statistic computed for an explicit instrument list
	InstrumentTypeList InstrumentType = "LIST"
)

// Valid reports whether t is one of the known instrument types
func (t InstrumentType) Valid() bool {
	switch t {
	case InstrumentTypeStock, InstrumentTypeETF, InstrumentTypeSector,
		InstrumentTypeIndustryGroup, InstrumentTypeList:
		return true
	}
	return false
}

// Instrument is a tradable instrument whose quotations are evaluated
type Instrument struct {
	ID            int64          `json:"id"`
	Symbol        string         `json:"symbol"`
	Name          string         `json:"name"`
	Type          InstrumentType `json:"type"`
	StockExchange string         `json:"stock_exchange,omitempty"`
}

// Quotation is one trading day of OHLCV data for an instrument.
// It is a read-only market fact; derived values live in snapshot tables.
type Quotation struct {
	Date         time.Time `json:"date"`
	Currency     Currency  `json:"currency"`
	ID           int64     `json:"id"`
	InstrumentID int64     `json:"instrument_id"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       int64     `json:"volume"`
}

// TruncateDate strips the intraday time component, keeping the calendar day in t's location
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// UTCDate returns midnight UTC of t's calendar day, the storage key of a trading day
func UTCDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
