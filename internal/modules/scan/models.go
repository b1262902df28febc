// Package scan runs the indicator, ranking and statistics pipeline over the
// instruments of one or more lists and tracks the state of every run.
package scan

import (
	"errors"
	"sync"
	"time"
)

// ExecutionStatus is the lifecycle state of a scan
type ExecutionStatus string

const (
	StatusNotExecuted ExecutionStatus = "NOT_EXECUTED"
	StatusInProgress  ExecutionStatus = "IN_PROGRESS"
	StatusFinished    ExecutionStatus = "FINISHED"
)

// CompletionStatus tells whether the last run processed every instrument
type CompletionStatus string

const (
	CompletionComplete   CompletionStatus = "COMPLETE"
	CompletionIncomplete CompletionStatus = "INCOMPLETE"
)

var (
	// ErrScanInProgress is returned when starting a scan that is already running
	ErrScanInProgress = errors.New("scan is already in progress")
	// ErrScanNotFound is returned for an unknown scan ID
	ErrScanNotFound = errors.New("scan not found")
)

// Record is a point-in-time copy of a scan, as stored and reported
type Record struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	ListIDs           []int64          `json:"list_ids"`
	ExecutionStatus   ExecutionStatus  `json:"execution_status"`
	CompletionStatus  CompletionStatus `json:"completion_status"`
	Progress          int              `json:"progress"`
	LastScan          time.Time        `json:"last_scan"`
	FailedInstruments []string         `json:"failed_instruments,omitempty"`
}

// Scan is a named set of instrument lists. Its status changes only through
// Start, SetProgress and Finish, which are safe for concurrent use.
type Scan struct {
	ID      string
	Name    string
	ListIDs []int64

	mu                sync.Mutex
	executionStatus   ExecutionStatus
	completionStatus  CompletionStatus
	progress          int
	lastScan          time.Time
	failedInstruments []string
}

// New creates a scan that has never been executed
func New(id, name string, listIDs []int64) *Scan {
	return &Scan{
		ID:               id,
		Name:             name,
		ListIDs:          append([]int64(nil), listIDs...),
		executionStatus:  StatusNotExecuted,
		completionStatus: CompletionIncomplete,
	}
}

// FromRecord restores a scan from its stored copy
func FromRecord(r Record) *Scan {
	s := New(r.ID, r.Name, r.ListIDs)
	s.executionStatus = r.ExecutionStatus
	s.completionStatus = r.CompletionStatus
	s.progress = r.Progress
	s.lastScan = r.LastScan
	s.failedInstruments = append([]string(nil), r.FailedInstruments...)
	return s
}

// Start moves a scan that is not running to IN_PROGRESS and resets its
// progress. A running scan is left untouched and ErrScanInProgress returned.
func (s *Scan) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.executionStatus == StatusInProgress {
		return ErrScanInProgress
	}
	s.executionStatus = StatusInProgress
	s.progress = 0
	s.failedInstruments = nil
	return nil
}

// SetProgress records the progress of a running scan, clamped to 0..100
func (s *Scan) SetProgress(progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.executionStatus == StatusInProgress {
		s.progress = progress
	}
}

// Finish ends the run. The scan is COMPLETE only when it ran to the end
// without failed instruments.
func (s *Scan) Finish(incomplete bool, failedInstruments []string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.executionStatus = StatusFinished
	s.lastScan = at
	s.failedInstruments = append([]string(nil), failedInstruments...)
	if incomplete || len(failedInstruments) > 0 {
		s.completionStatus = CompletionIncomplete
		return
	}
	s.completionStatus = CompletionComplete
	s.progress = 100
}

// Record returns a copy of the scan
func (s *Scan) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Record{
		ID:                s.ID,
		Name:              s.Name,
		ListIDs:           append([]int64(nil), s.ListIDs...),
		ExecutionStatus:   s.executionStatus,
		CompletionStatus:  s.completionStatus,
		Progress:          s.progress,
		LastScan:          s.lastScan,
		FailedInstruments: append([]string(nil), s.failedInstruments...),
	}
}
