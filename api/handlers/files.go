package handlers

import (
	"net/http"

	"netscan/api/models"
	"netscan/internal/logger"
	"netscan/internal/results"

	"github.com/gin-gonic/gin"
)

// FileHandler serves the front end and the scan results artifact
type FileHandler struct {
	indexPath string
	results   *results.File
}

// NewFileHandler creates a new file handler
func NewFileHandler(indexPath string, resultsFile *results.File) *FileHandler {
	return &FileHandler{indexPath: indexPath, results: resultsFile}
}

// GetIndex handles the GET / endpoint
// @Summary Front end
// @Produce html
// @Success 200 {string} string "index.html"
// @Failure 404 {string} string "index.html missing"
// @Router / [get]
func (h *FileHandler) GetIndex(c *gin.Context) {
	logger.Info("Serving index.html")
	c.File(h.indexPath)
}

// GetResults handles the GET /scan_results.json endpoint
// @Summary Latest scan results
// @Description Serves the scan script's results file byte for byte. Creates it as [] if missing.
// @Tags scan
// @Produce json
// @Success 200 {string} string "Raw results JSON"
// @Failure 500 {object} models.StatusResponse "Results file could not be created"
// @Router /scan_results.json [get]
func (h *FileHandler) GetResults(c *gin.Context) {
	if err := h.results.Ensure(); err != nil {
		logger.Errorf("Could not prepare results file: %v", err)
		c.JSON(http.StatusInternalServerError, models.Error("Scan results are unavailable."))
		return
	}

	c.Header("Cache-Control", "no-store")
	c.File(h.results.Path())
}
