package indicators

import (
	"time"

	"github.com/aristath/trendwatch/internal/domain"
)

// sequenceOf builds a sequence from closes listed newest first
func sequenceOf(closes ...float64) domain.Sequence {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	seq := make(domain.Sequence, len(closes))
	for i, c := range closes {
		seq[i] = &domain.Quotation{
			ID:           int64(len(closes) - i),
			InstrumentID: 1,
			Date:         start.AddDate(0, 0, len(closes)-i),
			Open:         c,
			High:         c,
			Low:          c,
			Close:        c,
			Volume:       1000,
		}
	}
	return seq
}
