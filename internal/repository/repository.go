package repository

import (
	"vent_bridge/internal/models"
)

// SnapshotStore holds the most recent bulk status snapshot. Put always
// overwrites; Get never blocks and never mutates the stored value.
type SnapshotStore interface {
	Put(s models.BulkSnapshot)
	Get() (models.BulkSnapshot, bool)
}

// RunStore keeps per-run outcome logs for bulk command batches so batch
// results are queryable instead of silently dropped. Retention is bounded;
// the oldest completed runs are evicted first.
type RunStore interface {
	Create(run models.CommandRun)
	Append(runID string, outcome models.CommandOutcome)
	Complete(runID string)
	Delete(runID string)
	Get(runID string) (models.CommandRun, bool)
}

type Repository struct {
	Snapshots SnapshotStore
	Runs      RunStore
}

func NewRepository() *Repository {
	return &Repository{
		Snapshots: NewSnapshotMem(),
		Runs:      NewRunMem(defaultRunRetention),
	}
}
