package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result holds a finished git command's captured output.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExecutionError is returned when a git command can't be spawned or exits
// with a non-zero status.
type ExecutionError struct {
	Args     []string
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s failed in %s with code %d: %s",
		strings.Join(e.Args, " "), e.Dir, e.ExitCode, msg)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Runner runs a git command in a given working directory.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (Result, error)
}

// ExecRunner runs the git binary found in $PATH.
type ExecRunner struct {
	// Binary defaults to "git"
	Binary string

	// Timeout bounds every command. Zero means no timeout: a hung
	// command blocks its pipeline forever.
	Timeout time.Duration
}

// NewExecRunner returns a runner for the git binary.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{
		Binary:  "git",
		Timeout: timeout,
	}
}

// Run executes git with args in dir, and wait for its completion.
func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	binary := r.Binary
	if binary == "" {
		binary = "git"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) // #nosec
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if err != nil {
		return res, &ExecutionError{
			Args:     args,
			Dir:      dir,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Err:      err,
		}
	}

	return res, nil
}
