// Package runner executes external programs with piped input and a hard deadline.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a command outlives its deadline.
var ErrTimeout = errors.New("command timed out")

// Runner runs a single command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Func adapts a plain function to Runner.
type Func func(ctx context.Context, cmd Command) (*Result, error)

func (f Func) Run(ctx context.Context, cmd Command) (*Result, error) {
	return f(ctx, cmd)
}

// Command describes one invocation. Args are passed as discrete argv
// entries; nothing is interpreted by a shell.
type Command struct {
	Path    string
	Args    []string
	Input   []string      // written to stdin, one per line
	Timeout time.Duration // zero means no deadline beyond ctx
}

// String renders the command for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result holds captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   []byte
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after the
	// process is killed on timeout.
	WaitDelay time.Duration
}

// NewExecRunner creates a runner backed by os/exec
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: 2 * time.Second}
}

// Run starts the command, feeds Input, and waits for exit or timeout.
// On a non-zero exit the returned Result is populated alongside *ExitError.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.WaitDelay = r.WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(c.Input) > 0 {
		cmd.Stdin = strings.NewReader(strings.Join(c.Input, "\n") + "\n")
	}

	started := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: time.Since(started),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%s: %w after %v", c, ErrTimeout, c.Timeout)
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && res.ExitCode > 0 {
		return res, &ExitError{Command: c.String(), ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res, fmt.Errorf("failed to run %s: %w", c, err)
}
