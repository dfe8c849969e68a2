// SPDX-License-Identifier: MPL-2.0

// Package venv provisions and activates the isolated Python environment the
// cybermorph launcher runs its target in.
//
// An Environment ties together a Layout (where things live), a Provisioner
// (how the environment is built) and a cross-process Lock. Acquire returns an
// Activation: an explicit environment record for child processes that holds
// the lock until Release is called.
//
//	env := venv.NewEnvironment(layout, opts, runner, logger)
//	act, err := env.Acquire(ctx, os.Environ())
//	if err != nil {
//		return err
//	}
//	defer act.Release()
//
// Readiness is decided by a completion marker written after the last setup
// step, so an interrupted setup is detected and rebuilt instead of being
// mistaken for a working environment. ReadinessDirectory restores the plain
// "directory exists" check.
package venv
