package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"vent_bridge/internal/models"
	"vent_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusSuccess = "success"
	statusError   = "error"

	errInvalidBodyPref = "invalid body: "
	errRunNotFound     = "run not found"
	errQueueBusy       = "bridge is busy; retry later"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"status": statusError, "message": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// @Summary      Execute a single control command
// @Description  action=coil writes an on/off coil; action=temp or fan_speed writes a register. Temperature values are tenths of a degree.
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        body  body   models.Command  true  "Command payload"
// @Success      200   {object}  map[string]string  "status, message"
// @Failure      400   {object}  map[string]string
// @Router       /api/control [post]
func (h *Handler) control(c *gin.Context) {
	var cmd models.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": errInvalidBodyPref + err.Error()})
		return
	}

	outcome := h.services.Dispatcher.Execute(c.Request.Context(), cmd)
	status := statusSuccess
	if !outcome.Succeeded {
		status = statusError
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "message": outcome.Message})
}

// @Summary      Submit a bulk command batch
// @Description  Commands execute in the background, strictly in submission order. Poll /api/control/bulk/{run_id} for outcomes.
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        body  body   []models.Command  true  "Ordered commands"
// @Success      200   {object}  map[string]interface{}  "status, message, run_id, accepted"
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/control/bulk [post]
func (h *Handler) bulkControl(c *gin.Context) {
	var cmds []models.Command
	if err := c.ShouldBindJSON(&cmds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": errInvalidBodyPref + err.Error()})
		return
	}

	run, err := h.services.BulkCommands.Submit(c.Request.Context(), cmds)
	if err != nil {
		if errors.Is(err, service.ErrQueueFull) {
			h.logAndJSONError(c, http.StatusServiceUnavailable, errQueueBusy, "bulk_control_queue_full", err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   statusSuccess,
		"message":  fmt.Sprintf("%d commands are being processed in the background", run.Accepted),
		"run_id":   run.RunID,
		"accepted": run.Accepted,
	})
}

// @Summary      Get outcomes of a bulk command run
// @Tags         control
// @Produce      json
// @Param        run_id  path  string  true  "Run id returned by the bulk submit"
// @Success      200  {object}  models.CommandRun
// @Failure      404  {object}  map[string]string
// @Router       /api/control/bulk/{run_id} [get]
func (h *Handler) bulkControlResults(c *gin.Context) {
	run, ok := h.services.BulkCommands.Outcomes(c.Param("run_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": statusError, "message": errRunNotFound})
		return
	}
	c.JSON(http.StatusOK, run)
}
