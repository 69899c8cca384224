package tools

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long output pipes are drained after a kill.
const waitDelay = time.Second

const (
	ExitOK       int32 = 0
	ExitFailure  int32 = 1
	ExitNotFound int32 = 127
)

// CommandRunner abstracts host command execution so callers can be
// exercised without the real binaries.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Result holds captured output and the classified exit code.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int32
}

// ExecRunner executes commands on the local host. A positive Timeout
// bounds each run on top of the caller's context.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	res.ExitCode = ExitCode(err)
	return res, err
}

// ExitCode maps a run error to a process exit code.
func ExitCode(err error) int32 {
	if err == nil {
		return ExitOK
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return int32(exitErr.ExitCode())
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return ExitNotFound
	}
	return ExitFailure
}

// FuncRunner adapts a function into a CommandRunner.
type FuncRunner func(ctx context.Context, name string, args ...string) (Result, error)

func (f FuncRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return f(ctx, name, args...)
}
