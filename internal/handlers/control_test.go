package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vent_bridge/internal/models"
	"vent_bridge/internal/service"
)

func TestControlHandler_SingleCommand(t *testing.T) {
	disp := &mockDispatcher{outcome: models.CommandOutcome{Succeeded: true, Message: "Coil at address 5 set to 1"}}
	s := &service.Service{Dispatcher: disp}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"action":"coil","value":1,"address":5,"slave_id":2}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/control", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if disp.calls != 1 {
		t.Fatalf("dispatcher calls = %d, want 1", disp.calls)
	}
	if disp.lastCmd.Action != "coil" || disp.lastCmd.Address != 5 || disp.lastCmd.SlaveID != 2 {
		t.Fatalf("wrong command forwarded: %+v", disp.lastCmd)
	}
	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != statusSuccess || resp.Message == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestControlHandler_FailedCommandReportsError(t *testing.T) {
	disp := &mockDispatcher{outcome: models.CommandOutcome{Succeeded: false, Message: "Invalid action specified"}}
	s := &service.Service{Dispatcher: disp}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"action":"reboot","value":1,"address":5}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/control", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// Well-formed response, not an HTTP fault.
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusError {
		t.Fatalf("status = %q, want %q", resp.Status, statusError)
	}
}

func TestControlHandler_InvalidBody(t *testing.T) {
	s := &service.Service{Dispatcher: &mockDispatcher{}}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/control", bytes.NewBufferString(`{"value":1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing action should be a 400, got %d", w.Code)
	}
}

func TestControlHandler_BulkSubmit(t *testing.T) {
	bulk := &mockBulkCommands{run: models.CommandRun{RunID: "run-42"}}
	s := &service.Service{BulkCommands: bulk}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`[
		{"action":"coil","value":1,"address":1},
		{"action":"temp","value":225,"address":2}
	]`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/control/bulk", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if bulk.submits != 1 || len(bulk.lastCmds) != 2 {
		t.Fatalf("submit calls=%d cmds=%d", bulk.submits, len(bulk.lastCmds))
	}
	var resp struct {
		Status   string `json:"status"`
		RunID    string `json:"run_id"`
		Accepted int    `json:"accepted"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusSuccess || resp.RunID != "run-42" || resp.Accepted != 2 {
		t.Fatalf("unexpected acknowledgement: %+v", resp)
	}
}

func TestControlHandler_BulkQueueFull(t *testing.T) {
	bulk := &mockBulkCommands{submitErr: service.ErrQueueFull}
	s := &service.Service{BulkCommands: bulk}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`[{"action":"coil","value":1,"address":1}]`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/control/bulk", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("full queue should be a 503, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestControlHandler_BulkResults(t *testing.T) {
	bulk := &mockBulkCommands{
		outcomesRun: models.CommandRun{
			RunID:    "run-42",
			Accepted: 1,
			Done:     true,
			Outcomes: []models.CommandOutcome{{Succeeded: true, Message: "ok"}},
		},
		outcomesOK: true,
	}
	s := &service.Service{BulkCommands: bulk}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/control/bulk/run-42", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if bulk.lastRunID != "run-42" {
		t.Fatalf("looked up %q, want run-42", bulk.lastRunID)
	}
	var run models.CommandRun
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("unmarshal run: %v", err)
	}
	if !run.Done || len(run.Outcomes) != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}

	// Unknown run → 404
	w = httptest.NewRecorder()
	bulk.outcomesOK = false
	req = httptest.NewRequest(http.MethodGet, "/api/control/bulk/ghost", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown run should be a 404, got %d", w.Code)
	}
}
