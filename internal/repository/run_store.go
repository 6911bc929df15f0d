package repository

import (
	"sync"

	"vent_bridge/internal/models"
)

// defaultRunRetention bounds how many bulk command runs are kept. There is
// no database behind the bridge, so old runs are evicted in creation order.
const defaultRunRetention = 64

// RunMem is the in-memory run outcome log.
type RunMem struct {
	mu    sync.Mutex
	runs  map[string]*models.CommandRun
	order []string // creation order, for eviction
	max   int
}

func NewRunMem(maxRuns int) *RunMem {
	if maxRuns <= 0 {
		maxRuns = defaultRunRetention
	}
	return &RunMem{
		runs: make(map[string]*models.CommandRun),
		max:  maxRuns,
	}
}

// Create registers a new run and evicts the oldest if over capacity.
func (r *RunMem) Create(run models.CommandRun) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := run
	cp.Outcomes = append([]models.CommandOutcome(nil), run.Outcomes...)
	r.runs[run.RunID] = &cp
	r.order = append(r.order, run.RunID)

	for len(r.order) > r.max {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.runs, oldest)
	}
}

// Append records one executed command's outcome against its run.
// Unknown run ids (already evicted) are ignored.
func (r *RunMem) Append(runID string, outcome models.CommandOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[runID]; ok {
		run.Outcomes = append(run.Outcomes, outcome)
	}
}

// Complete marks a run as finished.
func (r *RunMem) Complete(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[runID]; ok {
		run.Done = true
	}
}

// Delete discards a run, e.g. when its batch was never queued.
func (r *RunMem) Delete(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[runID]; !ok {
		return
	}
	delete(r.runs, runID)
	for i, id := range r.order {
		if id == runID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns a copy of the run so callers cannot race with the worker
// appending outcomes.
func (r *RunMem) Get(runID string) (models.CommandRun, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok {
		return models.CommandRun{}, false
	}
	cp := *run
	cp.Outcomes = append([]models.CommandOutcome(nil), run.Outcomes...)
	return cp, true
}
