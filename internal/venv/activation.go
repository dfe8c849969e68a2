// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"fmt"
	"sync"

	"cybermorph-cli/internal/runtime"

	"golang.org/x/exp/slices"
)

const (
	envVirtualEnv = "VIRTUAL_ENV"
	envPythonHome = "PYTHONHOME"
)

// Activation is an activated environment: the explicit environment record a
// child process runs under, plus the shared lock that keeps the environment
// from being removed while it is in use.
//
// Nothing about the launcher's own process environment changes. Release must
// be called on every exit path; it is idempotent.
type Activation struct {
	layout  Layout
	environ []string
	lock    *envLock

	mu         sync.Mutex
	released   bool
	releaseErr error
	onRelease  func()
}

func newActivation(layout Layout, base []string, lock *envLock) *Activation {
	return &Activation{
		layout:  layout,
		environ: activationEnviron(layout, base),
		lock:    lock,
	}
}

// activationEnviron derives the child environment the way the venv activate
// script does: VIRTUAL_ENV set, the environment's bin dir first on PATH and
// PYTHONHOME removed.
func activationEnviron(layout Layout, base []string) []string {
	environ := runtime.UnsetEnv(base, envPythonHome)
	environ = runtime.SetEnv(environ, envVirtualEnv, layout.EnvDir)
	return runtime.PrependPath(environ, layout.BinDir())
}

// Layout returns the activated environment's layout.
func (a *Activation) Layout() Layout {
	return a.layout
}

// Environ returns a copy of the activated environment.
func (a *Activation) Environ() []string {
	return slices.Clone(a.environ)
}

// Command builds an invocation of name inside the activated environment.
// name is searched on the activated PATH, so the environment's executables
// shadow same-named programs elsewhere. args are copied unchanged.
func (a *Activation) Command(name string, args []string) (runtime.Invocation, error) {
	if a.Released() {
		return runtime.Invocation{}, ErrReleased
	}

	path, err := runtime.LookPathIn(a.environ, name)
	if err != nil {
		return runtime.Invocation{}, fmt.Errorf("resolve %s in %s: %w", name, a.layout.EnvDir, err)
	}

	return runtime.Invocation{
		Path: path,
		Args: slices.Clone(args),
		Env:  a.Environ(),
	}, nil
}

// Release drops the environment lock. Only the first call has an effect;
// later calls return the first call's error.
func (a *Activation) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		return a.releaseErr
	}
	a.released = true
	a.releaseErr = a.lock.release()
	if a.onRelease != nil {
		a.onRelease()
	}
	return a.releaseErr
}

// Released reports whether Release has been called.
func (a *Activation) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}
