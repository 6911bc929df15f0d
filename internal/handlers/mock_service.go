package handlers

import (
	"context"

	"vent_bridge/internal/models"
	"vent_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockDispatcher struct {
	outcome models.CommandOutcome
	calls   int
	lastCmd models.Command
}

func (m *mockDispatcher) Execute(ctx context.Context, cmd models.Command) models.CommandOutcome {
	m.calls++
	m.lastCmd = cmd
	out := m.outcome
	out.Command = cmd
	return out
}

type mockStatusReader struct {
	status   models.UnitStatus
	err      error
	calls    int
	lastQ    models.VentQuery
	statuses []models.UnitStatus // optional per-call sequence
}

func (m *mockStatusReader) Read(ctx context.Context, q models.VentQuery) (models.UnitStatus, error) {
	idx := m.calls
	m.calls++
	m.lastQ = q
	if m.err != nil {
		return models.UnitStatus{}, m.err
	}
	if idx < len(m.statuses) {
		return m.statuses[idx], nil
	}
	return m.status, nil
}

type mockBulkCommands struct {
	run       models.CommandRun
	submitErr error
	submits   int
	lastCmds  []models.Command

	outcomesRun models.CommandRun
	outcomesOK  bool
	lastRunID   string
}

func (m *mockBulkCommands) Submit(ctx context.Context, cmds []models.Command) (models.CommandRun, error) {
	m.submits++
	m.lastCmds = cmds
	if m.submitErr != nil {
		return models.CommandRun{}, m.submitErr
	}
	run := m.run
	run.Accepted = len(cmds)
	return run, nil
}

func (m *mockBulkCommands) Outcomes(runID string) (models.CommandRun, bool) {
	m.lastRunID = runID
	return m.outcomesRun, m.outcomesOK
}

func (m *mockBulkCommands) Run(ctx context.Context) {}

type mockBulkStatus struct {
	submitErr   error
	submits     int
	lastQueries []models.VentQuery

	snapshot models.BulkSnapshot
	hasSnap  bool
}

func (m *mockBulkStatus) Submit(ctx context.Context, queries []models.VentQuery) error {
	m.submits++
	m.lastQueries = queries
	return m.submitErr
}

func (m *mockBulkStatus) Latest() (models.BulkSnapshot, bool) {
	return m.snapshot, m.hasSnap
}

func (m *mockBulkStatus) Run(ctx context.Context) {}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
