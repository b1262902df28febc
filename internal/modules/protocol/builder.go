package protocol

import (
	"fmt"
	"time"

	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/modules/classifier"
	"github.com/aristath/trendwatch/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

// Builder evaluates protocol profiles over quotation sequences
type Builder struct {
	classifier *classifier.Classifier
	table      *snapshots.Table
	profiles   Profiles
	log        zerolog.Logger
}

// NewBuilder creates a builder reading moving averages from table
func NewBuilder(c *classifier.Classifier, table *snapshots.Table, profiles Profiles, log zerolog.Logger) *Builder {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &Builder{
		classifier: c,
		table:      table,
		profiles:   profiles,
		log:        log.With().Str("component", "protocol").Logger(),
	}
}

// Build walks seq from the oldest quotation on or after since (the whole
// sequence for a zero since) to the newest and returns an entry for every
// check that occurred, oldest first. Checks that are not applicable on a
// date are skipped for that date.
func (b *Builder) Build(profile Profile, seq domain.Sequence, since time.Time) ([]ProtocolEntry, error) {
	selected, err := b.resolve(profile)
	if err != nil {
		return nil, err
	}

	window := seq
	if !since.IsZero() {
		window = seq.Since(since)
	}

	var entries []ProtocolEntry
	skipped := 0
	for i := len(window) - 1; i >= 0; i-- {
		day := classifier.NewDay(seq, i, b.table)
		date := window[i].Date

		for _, p := range selected {
			for _, check := range b.profiles[p] {
				predicate, ok := predicates[check.Predicate]
				if !ok {
					continue
				}
				outcome := predicate(b.classifier, day)
				if !outcome.IsApplicable() {
					skipped++
					continue
				}
				if outcome.Occurred() {
					entries = append(entries, ProtocolEntry{
						Date:     date,
						Category: check.Category,
						Profile:  p,
						Text:     check.Text,
					})
				}
			}
		}
	}

	b.log.Debug().
		Str("profile", string(profile)).
		Int("days", len(window)).
		Int("entries", len(entries)).
		Int("skipped", skipped).
		Msg("Protocol built")

	return entries, nil
}

func (b *Builder) resolve(profile Profile) ([]Profile, error) {
	if profile == ProfileAll {
		return profileOrder, nil
	}
	if _, ok := b.profiles[profile]; !ok {
		return nil, fmt.Errorf("unknown protocol profile %q", profile)
	}
	return []Profile{profile}, nil
}
