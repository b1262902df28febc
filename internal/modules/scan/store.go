package scan

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Store persists scan records
type Store interface {
	// Save inserts or replaces the record with the same ID
	Save(r Record) error
	// LoadAll returns every stored record ordered by name
	LoadAll() ([]Record, error)
}

// MemoryStore is a Store backed by a map
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Save implements Store
func (m *MemoryStore) Save(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = r
	return nil
}

// LoadAll implements Store
func (m *MemoryStore) LoadAll() ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// SQLiteStore keeps scan records in the scans table. List IDs and failed
// instruments are stored as msgpack blobs.
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteStore creates a scan store on db
func NewSQLiteStore(db *sql.DB, log zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:  db,
		log: log.With().Str("repo", "scans").Logger(),
	}
}

// Save implements Store
func (s *SQLiteStore) Save(r Record) error {
	listIDs, err := msgpack.Marshal(r.ListIDs)
	if err != nil {
		return fmt.Errorf("failed to encode list ids: %w", err)
	}
	failed, err := msgpack.Marshal(r.FailedInstruments)
	if err != nil {
		return fmt.Errorf("failed to encode failed instruments: %w", err)
	}

	var lastScan sql.NullInt64
	if !r.LastScan.IsZero() {
		lastScan = sql.NullInt64{Int64: r.LastScan.Unix(), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO scans
		(id, name, list_ids, execution_status, completion_status, progress, last_scan, failed_instruments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, listIDs, string(r.ExecutionStatus), string(r.CompletionStatus), r.Progress, lastScan, failed)
	if err != nil {
		return fmt.Errorf("failed to save scan %s: %w", r.ID, err)
	}

	s.log.Debug().
		Str("scan_id", r.ID).
		Str("execution_status", string(r.ExecutionStatus)).
		Int("progress", r.Progress).
		Msg("Scan saved")

	return nil
}

// LoadAll implements Store
func (s *SQLiteStore) LoadAll() ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT id, name, list_ids, execution_status, completion_status, progress, last_scan, failed_instruments
		FROM scans
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var listIDs, failed []byte
		var execution, completion string
		var lastScan sql.NullInt64

		if err := rows.Scan(&r.ID, &r.Name, &listIDs, &execution, &completion, &r.Progress, &lastScan, &failed); err != nil {
			return nil, fmt.Errorf("failed to scan scan record: %w", err)
		}
		r.ExecutionStatus = ExecutionStatus(execution)
		r.CompletionStatus = CompletionStatus(completion)
		if lastScan.Valid {
			r.LastScan = time.Unix(lastScan.Int64, 0).UTC()
		}
		if err := decodeBlob(listIDs, &r.ListIDs); err != nil {
			return nil, fmt.Errorf("failed to decode list ids of scan %s: %w", r.ID, err)
		}
		if err := decodeBlob(failed, &r.FailedInstruments); err != nil {
			return nil, fmt.Errorf("failed to decode failed instruments of scan %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scans: %w", err)
	}

	return records, nil
}

func decodeBlob(blob []byte, v interface{}) error {
	if len(blob) == 0 {
		return nil
	}
	return msgpack.Unmarshal(blob, v)
}

// Registry holds the live scans. Every scan exists once, so its mutex guards
// all runs of it.
type Registry struct {
	mu    sync.RWMutex
	scans map[string]*Scan
	store Store
	log   zerolog.Logger
}

// NewRegistry loads the scans of store. Scans stored as IN_PROGRESS were cut
// short by a restart and are restored as FINISHED and INCOMPLETE.
func NewRegistry(store Store, log zerolog.Logger) (*Registry, error) {
	r := &Registry{
		scans: make(map[string]*Scan),
		store: store,
		log:   log.With().Str("component", "scan_registry").Logger(),
	}

	records, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load scans: %w", err)
	}
	for _, rec := range records {
		if rec.ExecutionStatus == StatusInProgress {
			r.log.Warn().Str("scan_id", rec.ID).Msg("Scan was interrupted, marking incomplete")
			rec.ExecutionStatus = StatusFinished
			rec.CompletionStatus = CompletionIncomplete
			if err := store.Save(rec); err != nil {
				return nil, err
			}
		}
		r.scans[rec.ID] = FromRecord(rec)
	}

	return r, nil
}

// Add registers and persists a new scan
func (r *Registry) Add(s *Scan) error {
	if err := r.store.Save(s.Record()); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans[s.ID] = s
	return nil
}

// Get returns the scan with id
func (r *Registry) Get(id string) (*Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scans[id]
	if !ok {
		return nil, fmt.Errorf("scan %s: %w", id, ErrScanNotFound)
	}
	return s, nil
}

// FindByName returns the first scan named name
func (r *Registry) FindByName(name string) (*Scan, error) {
	for _, s := range r.List() {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("scan named %s: %w", name, ErrScanNotFound)
}

// List returns every scan ordered by name
func (r *Registry) List() []*Scan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scans := make([]*Scan, 0, len(r.scans))
	for _, s := range r.scans {
		scans = append(scans, s)
	}
	sort.Slice(scans, func(i, j int) bool { return scans[i].Name < scans[j].Name })
	return scans
}

// Persist stores the current state of s
func (r *Registry) Persist(s *Scan) error {
	return r.store.Save(s.Record())
}
