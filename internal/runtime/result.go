// SPDX-License-Identifier: MPL-2.0

package runtime

// Result is the terminal outcome of a launch: the status the launcher exits
// with and, for launcher-side failures, the error explaining it.
//
// A non-zero ExitCode with a nil Error is a normal child exit that must be
// propagated verbatim, not reported.
type Result struct {
	// ExitCode is the status the launcher process should exit with.
	ExitCode ExitCode
	// Error contains any launcher-side failure. Nil when the child ran.
	Error error
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// Success returns true if the command executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}
