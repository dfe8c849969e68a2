// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"cybermorph-cli/internal/runtime"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
// A nil Err exits silently, mirroring a child that already reported its own failure.
type ExitError struct {
	Code runtime.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// resultError converts a launch result into the error RunE returns.
func resultError(res *runtime.Result) error {
	if res.Success() {
		return nil
	}
	code := res.ExitCode
	if code.IsSuccess() {
		code = runtime.ExitCodeFailure
	}
	return &ExitError{Code: code, Err: res.Error}
}

// exitCode maps the error returned by a command tree to the process status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.Code)
	}
	return int(runtime.ExitCodeFailure)
}
