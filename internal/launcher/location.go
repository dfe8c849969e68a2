// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveHome returns the project directory the launcher works in.
//
// A non-empty override wins (made absolute against the working directory).
// Otherwise it is the directory holding the running executable, with
// symlinks resolved so a launcher linked into ~/bin still finds its project.
// The working directory is never used as a fallback.
func ResolveHome(override string, executable func() (string, error)) (string, error) {
	if override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve project directory %s: %w", override, err)
		}
		return abs, nil
	}

	if executable == nil {
		executable = os.Executable
	}
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("locate launcher executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve launcher executable %s: %w", exe, err)
	}
	return filepath.Dir(resolved), nil
}
