package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// processWaitDelay bounds how long Wait blocks on inherited pipes after the
// process was killed
const processWaitDelay = 2 * time.Second

// CommandResult captures one finished external process
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// StderrSummary returns the first non-empty stderr line, for failure reasons
func (r *CommandResult) StderrSummary() string {
	return firstLine(r.Stderr)
}

// CommandRunner starts external analyzers
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (*CommandResult, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	// Env is appended to the inherited environment
	Env []string
}

// NewExecRunner creates a runner that disables color output of child tools
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Env: []string{"NO_COLOR=1", "FORCE_COLOR=0"}}
}

// Run executes name with args in dir. A non-zero exit status is not an
// error: it is reported in ExitCode. Errors mean the process could not be
// started or was killed by ctx. On cancellation the whole process group is
// killed, and anything the tool left running in it is killed on return.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.Env...)
	cmd.WaitDelay = processWaitDelay
	isolateProcess(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Start()
	if err == nil {
		err = cmd.Wait()
		reapProcessGroup(cmd)
	}
	result := &CommandResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, fmt.Errorf("%s timed out after %s", name, result.Duration.Round(time.Millisecond))
		}
		return result, fmt.Errorf("%s cancelled: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return result, nil
}
