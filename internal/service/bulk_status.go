package service

import (
	"context"
	"time"

	"vent_bridge/internal/logger"
	"vent_bridge/internal/models"
	"vent_bridge/internal/repository"
)

// Vent-number derivation constants. Each vent owns a block of 156
// register addresses; temperature and speed live at fixed offsets inside
// the block, so two independent formulas must resolve to the same vent.
const (
	ventBlockSize    = 156
	tempBaseAddress  = 1
	speedBaseAddress = 36
)

// statusQueueDepth bounds how many bulk status runs may wait for the
// worker. A run submitted while one is in flight queues behind it.
const statusQueueDepth = 16

// defaultPollSpacing is the inter-query pacing delay when config leaves
// it unset; the bus is half-duplex and shared by the command path.
const defaultPollSpacing = 100 * time.Millisecond

// BulkStatusService polls vent query batches on a single background
// worker and retains the latest completed snapshot.
type BulkStatusService struct {
	reader    StatusReader
	snapshots repository.SnapshotStore
	jobs      chan []models.VentQuery
	spacing   time.Duration
	log       *logger.Logger
}

func NewBulkStatusService(reader StatusReader, snapshots repository.SnapshotStore, spacing time.Duration, log *logger.Logger) *BulkStatusService {
	if spacing <= 0 {
		spacing = defaultPollSpacing
	}
	return &BulkStatusService{
		reader:    reader,
		snapshots: snapshots,
		jobs:      make(chan []models.VentQuery, statusQueueDepth),
		spacing:   spacing,
		log:       log,
	}
}

// Submit queues one bulk status run; polling proceeds in the background.
func (s *BulkStatusService) Submit(ctx context.Context, queries []models.VentQuery) error {
	if len(queries) == 0 {
		return ErrEmptyBatch
	}
	batch := append([]models.VentQuery(nil), queries...)
	select {
	case s.jobs <- batch:
		return nil
	default:
		return ErrQueueFull
	}
}

// Latest returns the most recent completed snapshot, if any.
func (s *BulkStatusService) Latest() (models.BulkSnapshot, bool) {
	return s.snapshots.Get()
}

// Run is the worker loop; start it once with `go` and stop it by
// canceling ctx. Runs execute one at a time, never concurrently.
func (s *BulkStatusService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case queries := <-s.jobs:
			s.process(ctx, queries)
		}
	}
}

// process polls every query in submission order with the pacing delay
// between units, then atomically replaces the retained snapshot. A
// per-query failure is recorded as an error entry and the run continues.
// A canceled context abandons the run without storing a partial snapshot.
func (s *BulkStatusService) process(ctx context.Context, queries []models.VentQuery) {
	results := make([]models.VentResult, 0, len(queries))

	for i, q := range queries {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.spacing):
			}
		}

		status, err := s.reader.Read(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if s.log != nil {
				s.log.Warnw("bulk_status_query_failed", "slave_id", q.SlaveID, "err", err)
			}
			results = append(results, models.VentResult{
				SlaveID: q.SlaveID,
				Status:  "error",
				Message: err.Error(),
			})
			continue
		}

		vent := ventNumber(q.TempAddress, q.SpeedAddress)
		if vent == nil && s.log != nil {
			// Data-consistency anomaly, not a fault: the two address
			// spaces point at different vents.
			s.log.Warnw("vent_number_mismatch", "slave_id", q.SlaveID,
				"temp_address", q.TempAddress, "speed_address", q.SpeedAddress)
		}
		results = append(results, models.VentResult{
			SlaveID:    q.SlaveID,
			Status:     status.Status,
			Temp:       status.Temp,
			Speed:      status.Speed,
			VentNumber: vent,
		})
	}

	s.snapshots.Put(models.BulkSnapshot{
		Results:    results,
		CapturedAt: time.Now().UTC(),
	})
	if s.log != nil {
		s.log.Infow("bulk_status_run_done", "units", len(results))
	}
}

// ventNumber cross-checks the two address-derived formulas and returns
// the agreed vent index, or nil when they disagree.
func ventNumber(tempAddress, speedAddress int) *int {
	fromTemp := floorDiv(tempAddress-tempBaseAddress, ventBlockSize) + 1
	fromSpeed := floorDiv(speedAddress-speedBaseAddress, ventBlockSize) + 1
	if fromTemp != fromSpeed {
		return nil
	}
	return &fromTemp
}

// floorDiv divides rounding toward negative infinity; Go's / truncates
// toward zero, which disagrees for addresses below the block base.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
