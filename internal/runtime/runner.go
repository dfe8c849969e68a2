// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	goruntime "runtime"
	"syscall"
	"time"
)

// DefaultWaitDelay is how long a canceled child gets to exit after the
// interrupt before it is killed.
const DefaultWaitDelay = 10 * time.Second

// Compile-time interface check
var _ Runner = (*ExecRunner)(nil)

type (
	// Invocation describes one child process: what to run, with which argument
	// vector and under which explicit environment. Arguments are passed to the
	// OS as-is; nothing is re-split or re-quoted.
	Invocation struct {
		// Path is the executable. A bare name is resolved against the
		// launcher's own PATH; callers that need another PATH resolve first.
		Path string
		// Args are the arguments after argv[0].
		Args []string
		// Env is the complete child environment. Nil inherits the launcher's.
		Env []string
		// Dir is the working directory. Empty keeps the launcher's.
		Dir string
		// Stdin, Stdout and Stderr are the child's standard streams.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Runner runs an invocation to completion.
	//
	// The returned ExitCode is the child's status whenever the child started;
	// a non-zero status is not an error. The error is non-nil only when the
	// child could not be started, in which case the ExitCode follows shell
	// conventions (127 not found, 126 not executable, 1 otherwise).
	Runner interface {
		Run(ctx context.Context, inv Invocation) (ExitCode, error)
	}

	// ExecRunner is the Runner backed by os/exec.
	ExecRunner struct {
		// WaitDelay overrides DefaultWaitDelay when positive.
		WaitDelay time.Duration
	}

	// StartError is returned when a child process could not be started.
	StartError struct {
		Path string
		Err  error
	}
)

// NewExecRunner creates a runner that starts real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Error implements the error interface.
func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StartError) Unwrap() error { return e.Err }

// Run starts the invocation and blocks until the child exits.
//
// Cancelling ctx interrupts the child and kills it after WaitDelay.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (ExitCode, error) {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Env = inv.Env
	cmd.Dir = inv.Dir
	cmd.Stdin = inv.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr
	cmd.Cancel = func() error {
		if goruntime.GOOS == "windows" {
			return cmd.Process.Kill()
		}
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = DefaultWaitDelay
	if r.WaitDelay > 0 {
		cmd.WaitDelay = r.WaitDelay
	}

	err := cmd.Run()
	if cmd.ProcessState != nil {
		return processExitCode(cmd.ProcessState), nil
	}
	if err == nil {
		return 0, nil
	}

	return startFailureExitCode(err), &StartError{Path: inv.Path, Err: err}
}

// processExitCode converts a finished process state into a shell-style status.
func processExitCode(state *os.ProcessState) ExitCode {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return signalExitCode(int(ws.Signal()))
	}
	return ExitCode(state.ExitCode()).Clamp()
}

// startFailureExitCode maps a start failure to the status a POSIX shell would report.
func startFailureExitCode(err error) ExitCode {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ExitCodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return ExitCodeNotExecutable
	default:
		return ExitCodeFailure
	}
}
