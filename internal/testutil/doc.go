// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include filesystem setup (MustMkdirAll, MustWriteFile, MustWriteExecutable, NewProject),
// a FakeClock, and FakePython: a runtime.Runner that imitates the interpreter,
// pip and the delegated target without spawning processes. StubPython is its
// shell-script counterpart for tests that run real processes.
package testutil
