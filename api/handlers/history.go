package handlers

import (
	"net/http"
	"strconv"

	"netscan/api/models"
	"netscan/internal/history"
	"netscan/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// HistoryHandler serves past scan runs
type HistoryHandler struct {
	store history.Store
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(store history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// GetScans handles the GET /api/scans endpoint
// @Summary Recent scan runs
// @Description Lists scan requests and their outcomes, newest first
// @Tags scan
// @Produce json
// @Param limit query int false "Number of runs (default: 20, max: 200)" default(20)
// @Success 200 {array} models.ScanRunResponse "Recent runs"
// @Failure 400 {object} models.StatusResponse "Invalid limit"
// @Failure 500 {object} models.StatusResponse "History store error"
// @Router /api/scans [get]
func (h *HistoryHandler) GetScans(c *gin.Context) {
	limit := defaultHistoryLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		var err error
		limit, err = strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, models.Error("Invalid limit parameter"))
			return
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}
	}

	runs, err := h.store.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.Errorf("Failed to load scan history: %v", err)
		c.JSON(http.StatusInternalServerError, models.Error("Failed to load scan history."))
		return
	}

	c.JSON(http.StatusOK, models.ConvertRuns(runs))
}

// Healthz handles the GET /healthz endpoint
// @Summary Liveness probe
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
