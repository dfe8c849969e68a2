// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	// ReadinessMarker treats the environment as ready only once the
	// completion marker exists.
	ReadinessMarker Readiness = "marker"
	// ReadinessDirectory treats any existing environment directory as ready.
	ReadinessDirectory Readiness = "directory"
)

const (
	// StateAbsent means no environment directory exists.
	StateAbsent State = iota
	// StateIncomplete means the directory exists but setup never finished.
	StateIncomplete
	// StateReady means the environment can be activated.
	StateReady
)

// ErrInvalidReadiness is returned when a Readiness value is not recognized.
var ErrInvalidReadiness = errors.New("invalid readiness mode")

type (
	// Readiness selects the signal that marks an environment as usable.
	Readiness string

	// State is the observed provisioning state of an environment.
	State int
)

// IsValid returns whether the Readiness is a known mode, and a list of
// validation errors if it is not. The zero value is valid and means
// ReadinessMarker.
func (r Readiness) IsValid() (bool, []error) {
	switch r {
	case "", ReadinessMarker, ReadinessDirectory:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidReadiness, string(r), ReadinessMarker, ReadinessDirectory)}
	}
}

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateIncomplete:
		return "incomplete"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Inspect reports the environment's state under the given readiness mode.
func (l Layout) Inspect(mode Readiness) (State, error) {
	info, err := os.Stat(l.EnvDir)
	if errors.Is(err, fs.ErrNotExist) {
		return StateAbsent, nil
	}
	if err != nil {
		return StateAbsent, fmt.Errorf("failed to stat environment %s: %w", l.EnvDir, err)
	}
	if !info.IsDir() {
		return StateAbsent, fmt.Errorf("environment path %s exists but is not a directory", l.EnvDir)
	}

	if mode == ReadinessDirectory {
		return StateReady, nil
	}

	if _, err := os.Stat(l.MarkerPath()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StateIncomplete, nil
		}
		return StateAbsent, fmt.Errorf("failed to stat readiness marker: %w", err)
	}
	return StateReady, nil
}
