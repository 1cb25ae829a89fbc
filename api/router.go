// Package api wires the HTTP surface of the scan service.
// @title Netscan API
// @version 1.0
// @description Triggers the local network scan script and serves its results
// @BasePath /
// @schemes http
package api

import (
	"netscan/api/handlers"
	"netscan/internal/history"
	"netscan/internal/results"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Dependencies are the collaborators the handlers need.
type Dependencies struct {
	Lister    handlers.Lister
	Invoker   handlers.Invoker
	History   history.Store
	Results   *results.File
	IndexPath string

	// ScanLimiter throttles POST /api/scan; nil disables throttling.
	ScanLimiter *rate.Limiter
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	files := handlers.NewFileHandler(deps.IndexPath, deps.Results)
	r.GET("/", files.GetIndex)
	r.GET("/scan_results.json", files.GetResults)
	r.GET("/healthz", handlers.Healthz)

	interfaces := handlers.NewInterfaceHandler(deps.Lister)
	scans := handlers.NewScanHandler(deps.Invoker)
	runs := handlers.NewHistoryHandler(deps.History)

	apiGroup := r.Group("/api")
	apiGroup.GET("/interfaces", interfaces.GetInterfaces)
	apiGroup.POST("/scan", RateLimit(deps.ScanLimiter), scans.TriggerScan)
	apiGroup.GET("/scans", runs.GetScans)

	return r
}

// NewScanLimiter returns a token bucket for scan requests, or nil when
// perSecond is zero.
func NewScanLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
