// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"cybermorph-cli/internal/testutil"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"cybermorph":     Execute,
		"cybermorph-env": ExecuteEnv,
	})
}

// TestScripts runs the txtar scripts in testdata against both binaries.
// Each script gets a stub python3 on PATH and $WORK/project as the launcher
// home, since the binaries under test live in a temporary directory.
func TestScripts(t *testing.T) {
	testutil.SkipOnWindows(t)

	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			sysbin := filepath.Join(env.WorkDir, "sysbin")
			if err := os.MkdirAll(sysbin, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(sysbin, "python3"), []byte(testutil.StubPython), 0o755); err != nil {
				return err
			}

			env.Setenv("PATH", sysbin+string(os.PathListSeparator)+env.Getenv("PATH"))
			env.Setenv("CYBERMORPH_PROJECT_DIR", filepath.Join(env.WorkDir, "project"))
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("NO_COLOR", "1")
			return nil
		},
	})
}
