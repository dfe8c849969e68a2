// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package venv

import "context"

// envLock is the non-unix stub. Without flock, concurrent launchers are not
// serialized; provisioning races are possible exactly as without a lock.
type envLock struct{}

// acquireEnvLock is a no-op on platforms without flock.
func acquireEnvLock(_ context.Context, _ string, _ lockMode, _ func()) (*envLock, error) {
	return &envLock{}, nil
}

// downgrade is a no-op on platforms without flock.
func (l *envLock) downgrade(context.Context) error { return nil }

// release is a no-op on platforms without flock.
func (l *envLock) release() error { return nil }
