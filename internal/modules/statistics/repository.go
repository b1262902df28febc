package statistics

import (
	"sort"
	"sync"
	"time"

	"github.com/aristath/trendwatch/internal/domain"
)

// Repository stores statistics, at most one per (date, universe). Get and List
// address instrument-type universes, GetForList and ListForList the LIST ones.
type Repository interface {
	// Insert fails with ErrDuplicateStatistic if (date, universe) is taken
	Insert(stat *Statistic) error
	// Update replaces the statistic of the same (date, universe)
	Update(stat *Statistic) error
	Get(date time.Time, universe domain.InstrumentType) (*Statistic, error)
	// List returns the newest statistics of a universe first; limit <= 0 means all
	List(universe domain.InstrumentType, limit int) ([]*Statistic, error)
	GetForList(date time.Time, listID int64) (*Statistic, error)
	ListForList(listID int64, limit int) ([]*Statistic, error)
}

type statisticKey struct {
	date     time.Time
	universe domain.InstrumentType
	listID   int64
}

func keyOf(date time.Time, universe domain.InstrumentType, listID int64) statisticKey {
	return statisticKey{date: domain.UTCDate(date), universe: universe, listID: listID}
}

// InMemoryRepository is a Repository backed by a map
type InMemoryRepository struct {
	stats map[statisticKey]Statistic
	mu    sync.RWMutex
}

// NewInMemoryRepository creates an empty in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		stats: make(map[statisticKey]Statistic),
	}
}

// Insert stores a copy of stat
func (r *InMemoryRepository) Insert(stat *Statistic) error {
	if err := stat.validateUniverse(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyOf(stat.Date, stat.UniverseType, stat.ListID)
	if _, exists := r.stats[key]; exists {
		return ErrDuplicateStatistic
	}
	r.stats[key] = *stat
	return nil
}

// Update replaces an existing statistic, keeping its ID
func (r *InMemoryRepository) Update(stat *Statistic) error {
	if err := stat.validateUniverse(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyOf(stat.Date, stat.UniverseType, stat.ListID)
	existing, exists := r.stats[key]
	if !exists {
		return ErrStatisticNotFound
	}
	updated := *stat
	updated.ID = existing.ID
	r.stats[key] = updated
	return nil
}

// Get returns a copy of the statistic of (date, universe)
func (r *InMemoryRepository) Get(date time.Time, universe domain.InstrumentType) (*Statistic, error) {
	return r.get(keyOf(date, universe, 0))
}

// GetForList returns a copy of the statistic of list listID on date
func (r *InMemoryRepository) GetForList(date time.Time, listID int64) (*Statistic, error) {
	return r.get(keyOf(date, domain.InstrumentTypeList, listID))
}

func (r *InMemoryRepository) get(key statisticKey) (*Statistic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stat, exists := r.stats[key]
	if !exists {
		return nil, ErrStatisticNotFound
	}
	return &stat, nil
}

// List returns copies of the statistics of universe, newest first
func (r *InMemoryRepository) List(universe domain.InstrumentType, limit int) ([]*Statistic, error) {
	return r.list(universe, 0, limit), nil
}

// ListForList returns copies of the statistics of list listID, newest first
func (r *InMemoryRepository) ListForList(listID int64, limit int) ([]*Statistic, error) {
	return r.list(domain.InstrumentTypeList, listID, limit), nil
}

func (r *InMemoryRepository) list(universe domain.InstrumentType, listID int64, limit int) []*Statistic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Statistic
	for key, stat := range r.stats {
		if key.universe != universe || key.listID != listID {
			continue
		}
		s := stat
		result = append(result, &s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
