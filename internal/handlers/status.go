package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"vent_bridge/internal/models"
	"vent_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

const msgNoResultsYet = "No results yet"

// Default status addressing when query params are omitted: unit 1, on/off
// input 0, first temperature register, first speed register.
const (
	defaultOnAddress    = 0
	defaultTempAddress  = 1
	defaultSpeedAddress = 36
)

// Request DTO for bulk status: parallel arrays, index i = one vent query.
type bulkStatusRequest struct {
	SlaveID []int `json:"slave_id" binding:"required"`
	On      []int `json:"on" binding:"required"`
	Temp    []int `json:"temp" binding:"required"`
	Speed   []int `json:"speed" binding:"required"`
}

// @Summary      Read one unit's status
// @Description  Three sequential bus reads; a disconnected bus returns fixed demo values, a failed field defaults to 0.
// @Tags         status
// @Produce      json
// @Param        slave_id  query  int  false  "Unit address"           default(1)
// @Param        on        query  int  false  "On/off input address"   default(0)
// @Param        temp      query  int  false  "Temperature register"   default(1)
// @Param        speed     query  int  false  "Speed register"         default(36)
// @Success      200  {object}  models.UnitStatus
// @Failure      400  {object}  map[string]string
// @Router       /api/status [get]
func (h *Handler) status(c *gin.Context) {
	q := models.VentQuery{
		SlaveID:      models.DefaultSlaveID,
		OnAddress:    defaultOnAddress,
		TempAddress:  defaultTempAddress,
		SpeedAddress: defaultSpeedAddress,
	}
	var err error
	if q.SlaveID, err = queryInt(c, "slave_id", q.SlaveID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": "invalid slave_id"})
		return
	}
	if q.OnAddress, err = queryInt(c, "on", q.OnAddress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": "invalid on address"})
		return
	}
	if q.TempAddress, err = queryInt(c, "temp", q.TempAddress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": "invalid temp address"})
		return
	}
	if q.SpeedAddress, err = queryInt(c, "speed", q.SpeedAddress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": "invalid speed address"})
		return
	}

	st, err := h.services.StatusReader.Read(c.Request.Context(), q)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("status_read_failed", "err", err, "slave_id", q.SlaveID)
		}
		// Well-formed error variant; bus faults never surface as HTTP faults.
		c.JSON(http.StatusOK, gin.H{"Status": "error", "message": "Failed to read from Modbus device"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Submit a bulk status run
// @Description  Parallel arrays of equal length; index i describes one unit. Polling proceeds in the background, one unit at a time.
// @Tags         status
// @Accept       json
// @Produce      json
// @Param        body  body   bulkStatusRequest  true  "Parallel arrays"
// @Success      200   {object}  map[string]interface{}  "message, slave_ids"
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/status/bulk [post]
func (h *Handler) bulkStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": errInvalidBodyPref + err.Error()})
		return
	}

	n := len(req.SlaveID)
	if len(req.On) != n || len(req.Temp) != n || len(req.Speed) != n {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": "slave_id, on, temp and speed arrays must have equal length"})
		return
	}

	queries := make([]models.VentQuery, n)
	for i := 0; i < n; i++ {
		queries[i] = models.VentQuery{
			SlaveID:      req.SlaveID[i],
			OnAddress:    req.On[i],
			TempAddress:  req.Temp[i],
			SpeedAddress: req.Speed[i],
		}
	}

	if err := h.services.BulkStatus.Submit(c.Request.Context(), queries); err != nil {
		if errors.Is(err, service.ErrQueueFull) {
			h.logAndJSONError(c, http.StatusServiceUnavailable, errQueueBusy, "bulk_status_queue_full", err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Bulk fetch started",
		"slave_ids": req.SlaveID,
	})
}

// @Summary      Latest bulk status snapshot
// @Tags         status
// @Produce      json
// @Success      200  {object}  models.BulkSnapshot
// @Router       /api/status/bulk/results [get]
func (h *Handler) bulkStatusResults(c *gin.Context) {
	snap, ok := h.services.BulkStatus.Latest()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": msgNoResultsYet})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// queryInt parses an optional integer query parameter with a default.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	s := c.Query(name)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
