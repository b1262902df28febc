package history

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aristath/trendwatch/internal/domain"
)

// MemorySource keeps instruments, lists and quotation sequences in memory
type MemorySource struct {
	mu          sync.RWMutex
	instruments map[int64]*domain.Instrument
	lists       map[int64][]int64
	sequences   map[int64]domain.Sequence
}

// NewMemorySource creates an empty source
func NewMemorySource() *MemorySource {
	return &MemorySource{
		instruments: make(map[int64]*domain.Instrument),
		lists:       make(map[int64][]int64),
		sequences:   make(map[int64]domain.Sequence),
	}
}

// Add registers an instrument with its quotations and optional list memberships
func (s *MemorySource) Add(inst *domain.Instrument, quotations []*domain.Quotation, listIDs ...int64) error {
	seq, err := domain.NewSequence(quotations)
	if err != nil {
		return fmt.Errorf("failed to build sequence of %s: %w", inst.Symbol, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.instruments[inst.ID] = inst
	s.sequences[inst.ID] = seq
	for _, listID := range listIDs {
		s.lists[listID] = append(s.lists[listID], inst.ID)
	}
	return nil
}

// ListInstruments implements InstrumentSource
func (s *MemorySource) ListInstruments(listIDs ...int64) ([]*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := make(map[int64]*domain.Instrument)
	if len(listIDs) == 0 {
		for id, inst := range s.instruments {
			selected[id] = inst
		}
	}
	for _, listID := range listIDs {
		for _, id := range s.lists[listID] {
			selected[id] = s.instruments[id]
		}
	}

	instruments := make([]*domain.Instrument, 0, len(selected))
	for _, inst := range selected {
		instruments = append(instruments, inst)
	}
	sort.Slice(instruments, func(i, j int) bool { return instruments[i].Symbol < instruments[j].Symbol })
	return instruments, nil
}

// Quotations implements QuotationSource
func (s *MemorySource) Quotations(instrumentID int64) (domain.Sequence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq, ok := s.sequences[instrumentID]
	if !ok {
		return nil, fmt.Errorf("instrument %d: %w", instrumentID, ErrInstrumentNotFound)
	}
	return seq, nil
}
