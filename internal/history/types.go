// Package history keeps a log of scan invocations and their outcomes.
package history

import (
	"context"
	"time"
)

// Run is one scan request as seen by the API.
type Run struct {
	ID         int64     `json:"id"`
	Interface  string    `json:"interface"`
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message"`
	ExitCode   int       `json:"exit_code"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists runs. Recent returns newest first.
type Store interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
	Close() error
}
