// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"cybermorph-cli/internal/runtime"
)

// Compile-time interface check
var _ runtime.Runner = (*FakePython)(nil)

type (
	// FakePython is a runtime.Runner that imitates the base interpreter, pip
	// and the target executable. "-m venv DIR" creates DIR/pyvenv.cfg and
	// DIR/bin with stub executables so activation and target lookup work on
	// a real filesystem.
	FakePython struct {
		// Version is what "--version" reports. Defaults to "3.11.4".
		Version string
		// Targets are the executables created in every new environment's bin
		// dir in addition to "python".
		Targets []string
		// Fail maps a substring of the joined argument list to the exit code
		// the matching invocation returns (e.g. "-r" fails the requirements
		// install).
		Fail map[string]runtime.ExitCode
		// TargetExit is the exit code of any invocation that is not an
		// interpreter or pip call.
		TargetExit runtime.ExitCode

		mu    sync.Mutex
		calls []runtime.Invocation
	}

	// RecordedCall is a simplified invocation for assertions.
	RecordedCall struct {
		Base string
		Args []string
	}
)

// NewFakePython returns a FakePython whose environments contain target.
func NewFakePython(targets ...string) *FakePython {
	return &FakePython{Version: "3.11.4", Targets: targets}
}

// Run records inv and simulates its effect.
func (f *FakePython) Run(_ context.Context, inv runtime.Invocation) (runtime.ExitCode, error) {
	f.mu.Lock()
	inv.Args = slices.Clone(inv.Args)
	inv.Env = slices.Clone(inv.Env)
	f.calls = append(f.calls, inv)
	f.mu.Unlock()

	joined := strings.Join(inv.Args, " ")
	for key, code := range f.Fail {
		if strings.Contains(joined, key) {
			return code, nil
		}
	}

	switch {
	case len(inv.Args) == 1 && inv.Args[0] == "--version":
		fmt.Fprintf(inv.Stdout, "Python %s\n", f.Version)
		return 0, nil
	case len(inv.Args) == 3 && inv.Args[0] == "-m" && inv.Args[1] == "venv":
		return f.createEnv(inv.Args[2])
	case len(inv.Args) >= 2 && inv.Args[0] == "-m" && inv.Args[1] == "pip":
		return 0, nil
	default:
		return f.TargetExit, nil
	}
}

// Calls returns every recorded invocation in order.
func (f *FakePython) Calls() []runtime.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Recorded returns the recorded invocations reduced to base name and args.
func (f *FakePython) Recorded() []RecordedCall {
	calls := f.Calls()
	out := make([]RecordedCall, 0, len(calls))
	for _, c := range calls {
		out = append(out, RecordedCall{Base: filepath.Base(c.Path), Args: c.Args})
	}
	return out
}

// CountVenvCreations returns how many times "-m venv" was invoked.
func (f *FakePython) CountVenvCreations() int {
	n := 0
	for _, c := range f.Calls() {
		if len(c.Args) >= 2 && c.Args[0] == "-m" && c.Args[1] == "venv" {
			n++
		}
	}
	return n
}

func (f *FakePython) createEnv(dir string) (runtime.ExitCode, error) {
	bin := filepath.Join(dir, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		return 1, nil
	}
	if err := os.WriteFile(filepath.Join(dir, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0o644); err != nil {
		return 1, nil
	}
	for _, name := range append([]string{"python"}, f.Targets...) {
		if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			return 1, nil
		}
	}
	return 0, nil
}
