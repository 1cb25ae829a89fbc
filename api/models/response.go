package models

import (
	"time"

	"netscan/internal/history"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusResponse is the body of every scan trigger response and every error
type StatusResponse struct {
	Status  string  `json:"status" example:"error" description:"success or error"`
	Message string  `json:"message" example:"Invalid interface selected." description:"Human readable message"`
	Details *string `json:"details,omitempty" example:"netscan.sh: line 12: arp-scan: command not found" description:"Script stderr, only for script failures"`
}

// ScanRequest is the body of POST /api/scan
type ScanRequest struct {
	Interface string `json:"interface" example:"eth0" description:"Interface name from /api/interfaces"`
}

// ScanRunResponse represents one entry of the scan history
type ScanRunResponse struct {
	ID         int64     `json:"id" example:"42" description:"Run identifier"`
	Interface  string    `json:"interface" example:"eth0" description:"Requested interface"`
	Outcome    string    `json:"outcome" example:"Success" description:"Outcome kind"`
	Message    string    `json:"message" example:"Scan completed." description:"Message returned to the client"`
	ExitCode   int       `json:"exit_code" example:"0" description:"Script exit code, -1 if it did not exit normally"`
	StartedAt  time.Time `json:"started_at" example:"2025-09-26T11:24:47.994799+04:00" description:"Request received"`
	FinishedAt time.Time `json:"finished_at" example:"2025-09-26T11:26:02.120044+04:00" description:"Response produced"`
	DurationMS int64     `json:"duration_ms" example:"74125" description:"Elapsed time in milliseconds"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// Success builds a success response
func Success(message string) StatusResponse {
	return StatusResponse{Status: StatusSuccess, Message: message}
}

// Error builds an error response
func Error(message string) StatusResponse {
	return StatusResponse{Status: StatusError, Message: message}
}

// ConvertRun converts a history run to its API representation
func ConvertRun(run history.Run) ScanRunResponse {
	return ScanRunResponse{
		ID:         run.ID,
		Interface:  run.Interface,
		Outcome:    run.Outcome,
		Message:    run.Message,
		ExitCode:   run.ExitCode,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		DurationMS: run.Duration().Milliseconds(),
	}
}

// ConvertRuns converts a slice of history runs
func ConvertRuns(runs []history.Run) []ScanRunResponse {
	responses := make([]ScanRunResponse, len(runs))
	for i, run := range runs {
		responses[i] = ConvertRun(run)
	}
	return responses
}
