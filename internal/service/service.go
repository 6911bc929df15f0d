package service

import (
	"context"
	"errors"
	"time"

	"vent_bridge/internal/bus"
	"vent_bridge/internal/logger"
	"vent_bridge/internal/models"
	"vent_bridge/internal/repository"
)

// Dispatcher validates and executes one control command against the bus.
type Dispatcher interface {
	Execute(ctx context.Context, cmd models.Command) models.CommandOutcome
}

// StatusReader reads on/off, temperature and fan speed for one unit.
type StatusReader interface {
	Read(ctx context.Context, q models.VentQuery) (models.UnitStatus, error)
}

// BulkCommands accepts ordered command batches for background execution.
// Run is the single worker loop; stop it via context cancellation in main().
type BulkCommands interface {
	Submit(ctx context.Context, cmds []models.Command) (models.CommandRun, error)
	Outcomes(runID string) (models.CommandRun, bool)
	Run(ctx context.Context)
}

// BulkStatus accepts vent query batches, polls them sequentially in the
// background and retains the latest completed snapshot.
type BulkStatus interface {
	Submit(ctx context.Context, queries []models.VentQuery) error
	Latest() (models.BulkSnapshot, bool)
	Run(ctx context.Context)
}

// ErrQueueFull is returned when a background worker's job queue cannot
// accept another batch; the caller should retry later.
var ErrQueueFull = errors.New("background job queue is full")

// ErrEmptyBatch rejects submissions with nothing to do.
var ErrEmptyBatch = errors.New("batch contains no entries")

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Dispatcher
	StatusReader
	BulkCommands
	BulkStatus
}

// NewService wires the shared bus transport and in-memory stores into the
// concrete services. Every bus transaction from any sub-service is
// serialized by the transport itself.
func NewService(repos *repository.Repository, tr bus.Transport, spacing time.Duration, log *logger.Logger) *Service {
	dispatcher := NewDispatcherService(tr, log)
	reader := NewStatusService(tr, log)
	return &Service{
		Dispatcher:   dispatcher,
		StatusReader: reader,
		BulkCommands: NewBulkCommandService(dispatcher, repos.Runs, log),
		BulkStatus:   NewBulkStatusService(reader, repos.Snapshots, spacing, log),
	}
}
