package repository

import (
	"sync"

	"vent_bridge/internal/models"
)

// SnapshotMem is the in-memory single-slot snapshot store. The RWMutex
// plus value-copy semantics guarantee a reader never observes a
// partially written snapshot while the aggregator overwrites it.
type SnapshotMem struct {
	mu   sync.RWMutex
	last models.BulkSnapshot
	set  bool
}

func NewSnapshotMem() *SnapshotMem {
	return &SnapshotMem{}
}

// Put replaces the retained snapshot. Copies the results slice so the
// caller cannot mutate the stored value afterwards.
func (s *SnapshotMem) Put(snap models.BulkSnapshot) {
	results := make([]models.VentResult, len(snap.Results))
	copy(results, snap.Results)
	snap.Results = results

	s.mu.Lock()
	s.last = snap
	s.set = true
	s.mu.Unlock()
}

// Get returns the retained snapshot and whether one exists yet.
func (s *SnapshotMem) Get() (models.BulkSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.set
}
