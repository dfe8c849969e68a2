// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"errors"
	"fmt"

	"cybermorph-cli/internal/runtime"
)

var (
	// ErrManifestNotFound is the sentinel error wrapped by ManifestNotFoundError.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrInterpreterTooOld is the sentinel error wrapped by InterpreterTooOldError.
	ErrInterpreterTooOld = errors.New("interpreter too old")
	// ErrReleased is returned when an Activation is used after Release.
	ErrReleased = errors.New("activation already released")
	// ErrEnvironmentRemoved is returned when another process removed the
	// environment between provisioning and activation.
	ErrEnvironmentRemoved = errors.New("environment removed concurrently")
	// ErrUnsafeEnvDir is the sentinel error wrapped by UnsafeEnvDirError.
	ErrUnsafeEnvDir = errors.New("unsafe environment directory")
)

type (
	// StepError reports the setup step that aborted provisioning. ExitCode is
	// the step's own status and becomes the launcher's exit status.
	StepError struct {
		Step     StepName
		ExitCode runtime.ExitCode
		Err      error
	}

	// ManifestNotFoundError is returned when a file setup needs is missing.
	ManifestNotFoundError struct {
		// Kind names the file's role ("requirements manifest", "project definition").
		Kind string
		Path string
	}

	// UnsafeEnvDirError is returned instead of removing a directory that is
	// not an environment the launcher could have created.
	UnsafeEnvDirError struct {
		Path   string
		Reason string
	}

	// InterpreterTooOldError is returned when the base interpreter does not
	// satisfy the configured minimum version.
	InterpreterTooOldError struct {
		Interpreter string
		Found       PythonVersion
		Required    PythonVersion
	}
)

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("setup step %q failed (exit status %d): %v", e.Step, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("setup step %q failed (exit status %d)", e.Step, e.ExitCode)
}

// Unwrap returns the underlying cause, if any.
func (e *StepError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Path)
}

// Unwrap returns ErrManifestNotFound for errors.Is detection.
func (e *ManifestNotFoundError) Unwrap() error { return ErrManifestNotFound }

// Error implements the error interface.
func (e *InterpreterTooOldError) Error() string {
	return fmt.Sprintf("%s is Python %s, at least %s is required", e.Interpreter, e.Found, e.Required)
}

// Unwrap returns ErrInterpreterTooOld for errors.Is detection.
func (e *InterpreterTooOldError) Unwrap() error { return ErrInterpreterTooOld }

// Error implements the error interface.
func (e *UnsafeEnvDirError) Error() string {
	return fmt.Sprintf("refusing to use %s as the environment directory: %s", e.Path, e.Reason)
}

// Unwrap returns ErrUnsafeEnvDir for errors.Is detection.
func (e *UnsafeEnvDirError) Unwrap() error { return ErrUnsafeEnvDir }
