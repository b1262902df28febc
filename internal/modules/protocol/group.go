package protocol

import (
	"sort"
	"time"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/pkg/formulas"
)

// GroupByDate folds entries, possibly from several profiles, into one
// DateBasedProtocolEntry per calendar day, newest first. Entries keep their
// input order within a day.
func GroupByDate(entries []ProtocolEntry) []DateBasedProtocolEntry {
	byDate := make(map[time.Time]*DateBasedProtocolEntry)
	var dates []time.Time

	for _, e := range entries {
		key := domain.UTCDate(e.Date)
		group, ok := byDate[key]
		if !ok {
			group = &DateBasedProtocolEntry{Date: domain.TruncateDate(e.Date)}
			byDate[key] = group
			dates = append(dates, key)
		}
		group.Entries = append(group.Entries, SimpleProtocolEntry{Category: e.Category, Text: e.Text})
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	result := make([]DateBasedProtocolEntry, 0, len(dates))
	for _, key := range dates {
		group := byDate[key]
		var confirmations, violations, uncertain int
		for _, e := range group.Entries {
			switch e.Category {
			case CategoryConfirmation:
				confirmations++
			case CategoryViolation:
				violations++
			case CategoryUncertain:
				uncertain++
			}
		}
		total := len(group.Entries)
		group.PercentConfirmation = formulas.Percent(confirmations, total)
		group.PercentViolation = formulas.Percent(violations, total)
		group.PercentUncertain = formulas.Percent(uncertain, total)
		result = append(result, *group)
	}

	return result
}
