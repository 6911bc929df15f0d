package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vent_bridge/internal/models"
	"vent_bridge/internal/repository"
)

// recordingDispatcher executes nothing; it records order and fails a
// chosen address.
type recordingDispatcher struct {
	mu       sync.Mutex
	executed []models.Command
	failAddr int
}

func (d *recordingDispatcher) Execute(ctx context.Context, cmd models.Command) models.CommandOutcome {
	d.mu.Lock()
	d.executed = append(d.executed, cmd)
	d.mu.Unlock()
	if cmd.Address == d.failAddr {
		return models.CommandOutcome{Command: cmd, Succeeded: false, Message: "write failed"}
	}
	return models.CommandOutcome{Command: cmd, Succeeded: true, Message: "ok"}
}

func (d *recordingDispatcher) snapshotOrder() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]int, len(d.executed))
	for i, c := range d.executed {
		out[i] = c.Address
	}
	return out
}

func waitForRun(t *testing.T, s *BulkCommandService, runID string) models.CommandRun {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		run, ok := s.Outcomes(runID)
		if ok && run.Done {
			return run
		}
		if time.Now().After(deadline) {
			t.Fatalf("run %s never completed: %+v", runID, run)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBulkCommands_ExecutesInSubmissionOrder(t *testing.T) {
	t.Parallel()
	disp := &recordingDispatcher{failAddr: -1}
	s := NewBulkCommandService(disp, repository.NewRunMem(0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	cmds := []models.Command{
		{Action: models.ActionCoil, Value: 1, Address: 10},
		{Action: models.ActionTemp, Value: 220, Address: 11},
		{Action: models.ActionFanSpeed, Value: 2, Address: 12},
	}
	run, err := s.Submit(ctx, cmds)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if run.RunID == "" || run.Accepted != 3 {
		t.Fatalf("bad acknowledgement: %+v", run)
	}

	done := waitForRun(t, s, run.RunID)
	if len(done.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(done.Outcomes))
	}
	order := disp.snapshotOrder()
	for i, want := range []int{10, 11, 12} {
		if order[i] != want {
			t.Fatalf("execution order %v, want [10 11 12]", order)
		}
	}
}

func TestBulkCommands_FailureDoesNotStopBatch(t *testing.T) {
	t.Parallel()
	disp := &recordingDispatcher{failAddr: 11}
	s := NewBulkCommandService(disp, repository.NewRunMem(0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	run, err := s.Submit(ctx, []models.Command{
		{Action: models.ActionCoil, Value: 1, Address: 10},
		{Action: models.ActionCoil, Value: 1, Address: 11}, // fails
		{Action: models.ActionCoil, Value: 0, Address: 12},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	done := waitForRun(t, s, run.RunID)
	if len(done.Outcomes) != 3 {
		t.Fatalf("failed command must not stop the batch: %d outcomes", len(done.Outcomes))
	}
	if done.Outcomes[0].Succeeded != true || done.Outcomes[1].Succeeded != false || done.Outcomes[2].Succeeded != true {
		t.Fatalf("unexpected outcome pattern: %+v", done.Outcomes)
	}
}

func TestBulkCommands_SubmitValidation(t *testing.T) {
	t.Parallel()
	s := NewBulkCommandService(&recordingDispatcher{failAddr: -1}, repository.NewRunMem(0), nil)

	if _, err := s.Submit(context.Background(), nil); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("empty batch err = %v, want ErrEmptyBatch", err)
	}

	// No worker draining; fill the queue.
	cmds := []models.Command{{Action: models.ActionCoil, Value: 1, Address: 1}}
	for i := 0; i < commandQueueDepth; i++ {
		if _, err := s.Submit(context.Background(), cmds); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	run, err := s.Submit(context.Background(), cmds)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("overflow err = %v, want ErrQueueFull", err)
	}
	if _, ok := s.Outcomes(run.RunID); ok {
		t.Fatal("rejected submission must not leave an orphan run")
	}
}

func TestBulkCommands_OutcomesUnknownRun(t *testing.T) {
	t.Parallel()
	s := NewBulkCommandService(&recordingDispatcher{failAddr: -1}, repository.NewRunMem(0), nil)
	if _, ok := s.Outcomes("nope"); ok {
		t.Fatal("unknown run id must not resolve")
	}
}
