// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"io"
	"testing"

	"cybermorph-cli/internal/testutil"

	"github.com/charmbracelet/log"
)

const testTarget = "cybermorph-auto"

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestEnvironment wires an Environment for p with a fake interpreter.
func newTestEnvironment(t *testing.T, p *testutil.Project, opts Options) (*Environment, *testutil.FakePython) {
	t.Helper()

	fake := testutil.NewFakePython(testTarget)
	opts.SetupOutput = io.Discard
	env := NewEnvironment(NewLayout(p.Dir, LayoutOptions{}), opts, fake, discardLogger())
	return env, fake
}
