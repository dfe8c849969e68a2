// SPDX-License-Identifier: MPL-2.0

package venv

import "time"

// lockPollInterval is how often a blocked lock acquisition retries.
const lockPollInterval = 100 * time.Millisecond

const (
	// lockShared lets any number of launchers use a ready environment.
	lockShared lockMode = iota
	// lockExclusive is held while the environment is built or removed.
	lockExclusive
)

// lockMode selects shared or exclusive locking.
type lockMode int

// String returns the mode name for log output.
func (m lockMode) String() string {
	if m == lockExclusive {
		return "exclusive"
	}
	return "shared"
}
