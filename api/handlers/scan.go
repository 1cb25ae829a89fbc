package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"netscan/api/models"
	"netscan/internal/logger"
	"netscan/internal/scan"

	"github.com/gin-gonic/gin"
)

// Invoker runs validated scan requests
type Invoker interface {
	ScriptAvailable() bool
	Trigger(ctx context.Context, req scan.Request) (*scan.Outcome, error)
}

// ScanHandler handles scan trigger requests
type ScanHandler struct {
	invoker Invoker
}

// NewScanHandler creates a new scan handler
func NewScanHandler(invoker Invoker) *ScanHandler {
	return &ScanHandler{invoker: invoker}
}

// TriggerScan handles the POST /api/scan endpoint
// @Summary Run the network scan script
// @Description Validates the interface against /api/interfaces and runs the scan script with elevated privileges. Blocks until the script exits or times out.
// @Tags scan
// @Accept json
// @Produce json
// @Param request body models.ScanRequest true "Interface to scan"
// @Success 200 {object} models.StatusResponse "Scan completed"
// @Failure 400 {object} models.StatusResponse "Missing or invalid interface"
// @Failure 409 {object} models.StatusResponse "Another scan is running"
// @Failure 429 {object} models.StatusResponse "Too many scan requests"
// @Failure 500 {object} models.StatusResponse "Script missing, timed out or failed"
// @Router /api/scan [post]
func (h *ScanHandler) TriggerScan(c *gin.Context) {
	logger.Info("Received request to /api/scan")

	var req scan.Request
	if err := decodeBody(c.Request, &req); err != nil && h.invoker.ScriptAvailable() {
		logger.Warnf("Rejected malformed scan request: %v", err)
		c.JSON(http.StatusBadRequest, models.Error("Invalid JSON in request body."))
		return
	}

	outcome, err := h.invoker.Trigger(c.Request.Context(), req)
	if err != nil {
		writeScanError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Success(outcome.Message))
}

// decodeBody reads an optional JSON object. An empty body decodes to the
// zero value.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeScanError(c *gin.Context, err error) {
	var scanErr *scan.Error
	if !errors.As(err, &scanErr) {
		scanErr = &scan.Error{Kind: scan.KindUnexpected, Message: "An unexpected server error occurred: " + err.Error()}
	}

	resp := models.Error(scanErr.Message)
	if scanErr.Kind == scan.KindScriptFailed {
		details := scanErr.Details
		resp.Details = &details
	}
	c.JSON(scanErr.Kind.HTTPStatus(), resp)
}
