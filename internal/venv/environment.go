// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"cybermorph-cli/internal/runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

type (
	// Environment manages one isolated environment on disk.
	Environment struct {
		layout      Layout
		readiness   Readiness
		provisioner *Provisioner
		logger      *log.Logger
	}

	// Status is a snapshot of an environment for display.
	Status struct {
		Layout    Layout
		Readiness Readiness
		State     State
		// Marker is nil unless the marker exists and parses.
		Marker *Marker
		// Stale lists manifests changed since provisioning.
		Stale []string
	}
)

// NewEnvironment creates an Environment for layout.
func NewEnvironment(layout Layout, opts Options, runner runtime.Runner, logger *log.Logger) *Environment {
	if opts.Readiness == "" {
		opts.Readiness = ReadinessMarker
	}
	return &Environment{
		layout:      layout,
		readiness:   opts.Readiness,
		provisioner: NewProvisioner(layout, opts, runner, logger),
		logger:      logger,
	}
}

// Layout returns the environment's layout.
func (e *Environment) Layout() Layout {
	return e.layout
}

// Provisioner returns the provisioner used to build the environment.
func (e *Environment) Provisioner() *Provisioner {
	return e.provisioner
}

// Acquire activates the environment, provisioning it first if it is not
// ready. The returned Activation holds a shared lock until released.
//
// A ready environment is never rebuilt, even if its manifests changed since
// it was provisioned; that case is only logged.
func (e *Environment) Acquire(ctx context.Context, base []string) (*Activation, error) {
	if err := e.layout.Validate(); err != nil {
		return nil, err
	}
	lock, err := e.lock(ctx, lockShared)
	if err != nil {
		return nil, err
	}

	state, err := e.layout.Inspect(e.readiness)
	if err != nil {
		_ = lock.release()
		return nil, err
	}

	if state == StateReady {
		e.warnIfStale()
	} else {
		if err := lock.release(); err != nil {
			e.logger.Debug("lock release failed", "error", err)
		}
		if lock, err = e.lock(ctx, lockExclusive); err != nil {
			return nil, err
		}
		if _, err := e.ensureLocked(ctx, base, false); err != nil {
			_ = lock.release()
			return nil, err
		}
		if err := lock.downgrade(ctx); err != nil {
			_ = lock.release()
			return nil, err
		}
		// Another process may have taken the lock during the downgrade.
		if state, err = e.layout.Inspect(e.readiness); err != nil || state != StateReady {
			_ = lock.release()
			if err == nil {
				err = ErrEnvironmentRemoved
			}
			return nil, err
		}
	}

	act := newActivation(e.layout, base, lock)
	act.onRelease = func() { e.logger.Debug("environment released", "path", e.layout.EnvDir) }
	e.logger.Debug("environment activated", "path", e.layout.EnvDir)
	return act, nil
}

// Provision builds the environment unless it is already ready. force removes
// an existing environment first. It reports whether anything was built.
func (e *Environment) Provision(ctx context.Context, base []string, force bool) (bool, error) {
	if err := e.layout.Validate(); err != nil {
		return false, err
	}
	lock, err := e.lock(ctx, lockExclusive)
	if err != nil {
		return false, err
	}
	defer func() { _ = lock.release() }()

	return e.ensureLocked(ctx, base, force)
}

// Reset removes the environment. Running launchers keep it alive: Reset waits
// until every activation is released.
func (e *Environment) Reset(ctx context.Context) error {
	if err := e.layout.Validate(); err != nil {
		return err
	}
	lock, err := e.lock(ctx, lockExclusive)
	if err != nil {
		return err
	}
	defer func() { _ = lock.release() }()

	return e.remove()
}

// Status reports the environment's current state without taking the lock.
func (e *Environment) Status() (Status, error) {
	st := Status{Layout: e.layout, Readiness: e.readiness}

	state, err := e.layout.Inspect(e.readiness)
	if err != nil {
		return st, err
	}
	st.State = state

	if state == StateAbsent {
		return st, nil
	}
	marker, err := ReadMarker(e.layout.MarkerPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return st, err
	}
	st.Marker = marker
	st.Stale, err = marker.StaleFiles(e.layout)
	return st, err
}

// ensureLocked provisions under an already held exclusive lock.
func (e *Environment) ensureLocked(ctx context.Context, base []string, force bool) (bool, error) {
	state, err := e.layout.Inspect(e.readiness)
	if err != nil {
		return false, err
	}

	switch {
	case state == StateReady && !force:
		e.logger.Debug("environment already provisioned", "path", e.layout.EnvDir)
		return false, nil
	case state == StateIncomplete:
		e.logger.Warn("environment setup never completed, rebuilding", "path", e.layout.EnvDir)
	case state == StateReady:
		e.logger.Info("rebuilding environment", "path", e.layout.EnvDir)
	}

	if state != StateAbsent {
		if err := e.remove(); err != nil {
			return false, err
		}
	}

	e.logger.Info("provisioning environment", "path", e.layout.EnvDir)
	if err := e.provisioner.Provision(ctx, base); err != nil {
		return false, err
	}
	return true, nil
}

// remove deletes the environment directory. It refuses any directory that
// "python -m venv" could not have produced: one that holds the project, or a
// non-empty one without pyvenv.cfg or the readiness marker.
func (e *Environment) remove() error {
	if err := e.layout.Validate(); err != nil {
		return err
	}
	entries, err := os.ReadDir(e.layout.EnvDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to inspect environment %s: %w", e.layout.EnvDir, err)
	}
	if len(entries) > 0 && !slices.ContainsFunc(entries, isEnvironmentEntry) {
		return &UnsafeEnvDirError{Path: e.layout.EnvDir, Reason: "it is not empty and has no " + PyvenvConfigFileName}
	}
	if err := os.RemoveAll(e.layout.EnvDir); err != nil {
		return fmt.Errorf("failed to remove environment %s: %w", e.layout.EnvDir, err)
	}
	return nil
}

func isEnvironmentEntry(entry fs.DirEntry) bool {
	name := entry.Name()
	return !entry.IsDir() && (name == PyvenvConfigFileName || name == MarkerFileName)
}

func (e *Environment) lock(ctx context.Context, mode lockMode) (*envLock, error) {
	path := e.layout.LockPath()
	lock, err := acquireEnvLock(ctx, path, mode, func() {
		e.logger.Info("waiting for another launcher to finish with the environment", "lock", path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to lock environment: %w", err)
	}
	return lock, nil
}

func (e *Environment) warnIfStale() {
	if e.readiness != ReadinessMarker {
		return
	}
	marker, err := ReadMarker(e.layout.MarkerPath())
	if err != nil {
		e.logger.Debug("readiness marker unreadable", "error", err)
		return
	}
	stale, err := marker.StaleFiles(e.layout)
	if err != nil {
		e.logger.Debug("staleness check failed", "error", err)
		return
	}
	if len(stale) > 0 {
		e.logger.Warn("manifests changed since the environment was provisioned; run 'cybermorph-env provision --force' to rebuild", "files", stale)
	}
}
