package service

import (
	"context"
	"time"

	"vent_bridge/internal/logger"
	"vent_bridge/internal/models"
	"vent_bridge/internal/repository"

	"github.com/google/uuid"
)

// commandQueueDepth bounds how many batches may wait for the worker. A
// full queue rejects the submission instead of blocking the HTTP handler.
const commandQueueDepth = 16

type commandJob struct {
	runID    string
	commands []models.Command
}

// BulkCommandService executes ordered command batches on a single
// background worker, strictly in submission order, recording every
// outcome against the batch's run id.
type BulkCommandService struct {
	dispatcher Dispatcher
	runs       repository.RunStore
	jobs       chan commandJob
	log        *logger.Logger
}

func NewBulkCommandService(dispatcher Dispatcher, runs repository.RunStore, log *logger.Logger) *BulkCommandService {
	return &BulkCommandService{
		dispatcher: dispatcher,
		runs:       runs,
		jobs:       make(chan commandJob, commandQueueDepth),
		log:        log,
	}
}

// Submit accepts a batch and returns its run record immediately; execution
// proceeds in the background. The run id lets the client poll for outcomes.
func (s *BulkCommandService) Submit(ctx context.Context, cmds []models.Command) (models.CommandRun, error) {
	if len(cmds) == 0 {
		return models.CommandRun{}, ErrEmptyBatch
	}

	run := models.CommandRun{
		RunID:       uuid.NewString(),
		SubmittedAt: time.Now().UTC(),
		Accepted:    len(cmds),
	}
	s.runs.Create(run)

	batch := append([]models.Command(nil), cmds...)
	select {
	case s.jobs <- commandJob{runID: run.RunID, commands: batch}:
	default:
		s.runs.Delete(run.RunID)
		return models.CommandRun{}, ErrQueueFull
	}
	return run, nil
}

// Outcomes returns the current state of a run: pending, partially
// executed, or done.
func (s *BulkCommandService) Outcomes(runID string) (models.CommandRun, bool) {
	return s.runs.Get(runID)
}

// Run is the worker loop; start it once with `go` and stop it by
// canceling ctx.
func (s *BulkCommandService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.process(ctx, job)
		}
	}
}

// process executes one batch in order. A failed command is recorded and
// the batch continues; nothing here can abort the run.
func (s *BulkCommandService) process(ctx context.Context, job commandJob) {
	for _, cmd := range job.commands {
		outcome := s.dispatcher.Execute(ctx, cmd)
		s.runs.Append(job.runID, outcome)
		if !outcome.Succeeded && s.log != nil {
			s.log.Warnw("bulk_command_failed", "run_id", job.runID,
				"action", cmd.Action, "address", cmd.Address, "slave_id", cmd.SlaveID,
				"message", outcome.Message)
		}
	}
	s.runs.Complete(job.runID)
	if s.log != nil {
		s.log.Infow("bulk_command_run_done", "run_id", job.runID, "commands", len(job.commands))
	}
}
