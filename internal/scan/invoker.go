// Package scan validates scan requests and runs the external scan script.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/semaphore"

	"netscan/internal/history"
	"netscan/internal/logger"
	"netscan/internal/runner"
)

const (
	msgCompleted      = "Scan completed."
	msgScriptNotFound = "Scan script not found on server."
	msgMissingIface   = "Missing 'interface' in request body."
	msgInvalidIface   = "Invalid interface selected."
	msgBusy           = "A scan is already in progress."
	msgScriptFailed   = "Scan script failed to execute."
)

// InterfaceLister is the whitelist a requested interface must belong to.
type InterfaceLister interface {
	Contains(ctx context.Context, name string) bool
}

// Request is the decoded body of POST /api/scan. A nil Interface means
// the field was absent.
type Request struct {
	Interface *string `json:"interface"`
}

// Outcome describes a completed scan.
type Outcome struct {
	Interface string
	Message   string
	Duration  time.Duration
}

// Options configures an Invoker.
type Options struct {
	ScriptPath string
	ScanType   string
	Timeout    time.Duration

	// PrivilegeCommand wraps the script (e.g. "sudo"); empty runs it directly.
	PrivilegeCommand string
	PrivilegeArgs    []string

	// MaxConcurrent caps simultaneous scans; 0 leaves them unbounded.
	MaxConcurrent int
}

// Invoker runs the scan script on behalf of HTTP clients.
type Invoker struct {
	opts    Options
	lister  InterfaceLister
	runner  runner.Runner
	history history.Store
	slots   *semaphore.Weighted
	stat    func(string) (os.FileInfo, error)
	now     func() time.Time
}

// NewInvoker creates an invoker. store may be nil.
func NewInvoker(opts Options, lister InterfaceLister, r runner.Runner, store history.Store) *Invoker {
	inv := &Invoker{
		opts:    opts,
		lister:  lister,
		runner:  r,
		history: store,
		stat:    os.Stat,
		now:     time.Now,
	}
	if opts.MaxConcurrent > 0 {
		inv.slots = semaphore.NewWeighted(int64(opts.MaxConcurrent))
	}
	return inv
}

// ScriptAvailable reports whether the scan script exists as a regular file.
func (inv *Invoker) ScriptAvailable() bool {
	info, err := inv.stat(inv.opts.ScriptPath)
	return err == nil && !info.IsDir()
}

// Trigger validates req and runs the scan script to completion. Failures
// are returned as *Error. The child process is not tied to ctx
// cancellation: a client hanging up does not abort a running scan.
func (inv *Invoker) Trigger(ctx context.Context, req Request) (*Outcome, error) {
	started := inv.now()
	iface := ""
	if req.Interface != nil {
		iface = *req.Interface
	}

	outcome, exitCode, err := inv.trigger(ctx, req)
	inv.record(ctx, iface, started, exitCode, outcome, err)
	return outcome, err
}

func (inv *Invoker) trigger(ctx context.Context, req Request) (*Outcome, int, error) {
	if !inv.ScriptAvailable() {
		logger.Errorf("Scan script not found at %s", inv.opts.ScriptPath)
		return nil, -1, &Error{Kind: KindScriptNotFound, Message: msgScriptNotFound}
	}

	if req.Interface == nil || *req.Interface == "" {
		return nil, -1, &Error{Kind: KindBadRequest, Message: msgMissingIface}
	}
	iface := *req.Interface

	if !inv.lister.Contains(ctx, iface) {
		logger.Warnf("Rejected scan request for unknown interface %q", iface)
		return nil, -1, &Error{Kind: KindInvalidInterface, Message: msgInvalidIface}
	}

	if inv.slots != nil {
		if !inv.slots.TryAcquire(1) {
			return nil, -1, &Error{Kind: KindBusy, Message: msgBusy}
		}
		defer inv.slots.Release(1)
	}

	cmd := inv.command(iface)
	logger.Infof("Executing command: %s (interface=%s)", cmd, iface)

	res, err := inv.runner.Run(context.WithoutCancel(ctx), cmd)
	exitCode := -1
	if res != nil {
		exitCode = res.ExitCode
		if len(res.Stdout) > 0 {
			logger.Debugf("Script STDOUT: %s", res.Stdout)
		}
	}

	if err != nil {
		return nil, exitCode, inv.classify(err)
	}

	logger.Info("Scan script executed successfully.")
	out := &Outcome{Interface: iface, Message: msgCompleted}
	if res != nil {
		out.Duration = res.Duration
	}
	return out, exitCode, nil
}

// command builds the argv and stdin for one scan. The interface name only
// ever travels as a stdin line.
func (inv *Invoker) command(iface string) runner.Command {
	cmd := runner.Command{
		Path:    inv.opts.ScriptPath,
		Input:   []string{iface, inv.opts.ScanType},
		Timeout: inv.opts.Timeout,
	}
	if inv.opts.PrivilegeCommand != "" {
		cmd.Path = inv.opts.PrivilegeCommand
		cmd.Args = append(append([]string{}, inv.opts.PrivilegeArgs...), inv.opts.ScriptPath)
	}
	return cmd
}

func (inv *Invoker) classify(err error) error {
	if errors.Is(err, runner.ErrTimeout) {
		logger.Error("Scan script timed out.")
		return &Error{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("Scan script timed out after %s.", humanDuration(inv.opts.Timeout)),
			Err:     err,
		}
	}

	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		logger.Errorf("Scan script failed with exit code %d.", exitErr.ExitCode)
		logger.Errorf("Script STDERR: %s", exitErr.Stderr)
		return &Error{
			Kind:    KindScriptFailed,
			Message: msgScriptFailed,
			Details: string(exitErr.Stderr),
			Err:     err,
		}
	}

	logger.Errorf("An unexpected error occurred: %v", err)
	return &Error{
		Kind:    KindUnexpected,
		Message: fmt.Sprintf("An unexpected server error occurred: %v", err),
		Err:     err,
	}
}

func (inv *Invoker) record(ctx context.Context, iface string, started time.Time, exitCode int, out *Outcome, err error) {
	if inv.history == nil {
		return
	}

	run := history.Run{
		Interface:  iface,
		Outcome:    string(KindOf(err)),
		ExitCode:   exitCode,
		StartedAt:  started,
		FinishedAt: inv.now(),
	}
	var scanErr *Error
	switch {
	case out != nil:
		run.Message = out.Message
	case errors.As(err, &scanErr):
		run.Message = scanErr.Message
	case err != nil:
		run.Message = err.Error()
	}

	if recErr := inv.history.Record(context.WithoutCancel(ctx), run); recErr != nil {
		logger.Warnf("Failed to record scan run: %v", recErr)
	}
}

// humanDuration renders whole minutes the way users read them
// ("5 minutes") and falls back to Go notation otherwise.
func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d == time.Minute:
		return "1 minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	case d == time.Second:
		return "1 second"
	case d%time.Second == 0 && d < time.Minute:
		return fmt.Sprintf("%d seconds", d/time.Second)
	default:
		return d.String()
	}
}
