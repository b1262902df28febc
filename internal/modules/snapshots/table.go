package snapshots

import "sync"

// Table is an in-memory side-table of snapshots keyed by quotation ID.
// Writing the same snapshot twice leaves the table unchanged.
type Table struct {
	movingAverages    map[int64]MovingAverage
	relativeStrengths map[int64]RelativeStrength
	mu                sync.RWMutex
}

// NewTable creates an empty snapshot table
func NewTable() *Table {
	return &Table{
		movingAverages:    make(map[int64]MovingAverage),
		relativeStrengths: make(map[int64]RelativeStrength),
	}
}

// SetMovingAverage stores the moving-average snapshot of a quotation
func (t *Table) SetMovingAverage(quotationID int64, ma MovingAverage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.movingAverages[quotationID] = ma
}

// MovingAverage returns the moving-average snapshot of a quotation
func (t *Table) MovingAverage(quotationID int64) (MovingAverage, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ma, ok := t.movingAverages[quotationID]
	return ma, ok
}

// SetRelativeStrength stores the relative-strength snapshot of a quotation
func (t *Table) SetRelativeStrength(quotationID int64, rs RelativeStrength) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.relativeStrengths[quotationID] = rs
}

// RelativeStrength returns the relative-strength snapshot of a quotation
func (t *Table) RelativeStrength(quotationID int64) (RelativeStrength, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rs, ok := t.relativeStrengths[quotationID]
	return rs, ok
}

// UpdateRelativeStrength applies fn to an existing relative-strength snapshot.
// It is a no-op returning false when the quotation has no snapshot.
func (t *Table) UpdateRelativeStrength(quotationID int64, fn func(*RelativeStrength)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	rs, ok := t.relativeStrengths[quotationID]
	if !ok {
		return false
	}
	fn(&rs)
	t.relativeStrengths[quotationID] = rs
	return true
}

// MovingAverages returns a copy of all moving-average snapshots
func (t *Table) MovingAverages() map[int64]MovingAverage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[int64]MovingAverage, len(t.movingAverages))
	for id, ma := range t.movingAverages {
		out[id] = ma
	}
	return out
}

// RelativeStrengths returns a copy of all relative-strength snapshots
func (t *Table) RelativeStrengths() map[int64]RelativeStrength {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[int64]RelativeStrength, len(t.relativeStrengths))
	for id, rs := range t.relativeStrengths {
		out[id] = rs
	}
	return out
}

// Len returns the number of quotations with a moving-average snapshot
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.movingAverages)
}
