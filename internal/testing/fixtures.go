package testing

import (
	"time"

	"github.com/aristath/trendwatch/internal/domain"
)

// NewInstrumentFixtures returns a small mixed universe of instruments
func NewInstrumentFixtures() []*domain.Instrument {
	return []*domain.Instrument{
		{ID: 1, Symbol: "AAPL", Name: "Apple Inc.", Type: domain.InstrumentTypeStock, StockExchange: "NDQ"},
		{ID: 2, Symbol: "MSFT", Name: "Microsoft Corporation", Type: domain.InstrumentTypeStock, StockExchange: "NDQ"},
		{ID: 3, Symbol: "NVDA", Name: "NVIDIA Corporation", Type: domain.InstrumentTypeStock, StockExchange: "NDQ"},
		{ID: 4, Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Type: domain.InstrumentTypeETF, StockExchange: "NYSE"},
		{ID: 5, Symbol: "XLK", Name: "Technology Select Sector SPDR", Type: domain.InstrumentTypeSector, StockExchange: "NYSE"},
	}
}

// FixtureStart is the first trading day of generated quotation series
var FixtureStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewQuotationSeries builds one quotation per close, oldest first, on
// consecutive days starting at FixtureStart. Highs and lows sit 1% around the
// close and the volume grows with every day. IDs start at firstID.
func NewQuotationSeries(instrumentID, firstID int64, closes ...float64) []*domain.Quotation {
	quotations := make([]*domain.Quotation, len(closes))
	for i, c := range closes {
		quotations[i] = &domain.Quotation{
			ID:           firstID + int64(i),
			InstrumentID: instrumentID,
			Date:         FixtureStart.AddDate(0, 0, i),
			Open:         c,
			High:         c * 1.01,
			Low:          c * 0.99,
			Close:        c,
			Volume:       int64(1000 + 10*i),
			Currency:     domain.CurrencyUSD,
		}
	}
	return quotations
}

// NewTrendingCloses returns n closes starting at start and changing by step per day
func NewTrendingCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return closes
}
