// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
)

// LookPathIn searches for an executable named file in the directories of the
// PATH found in environ. Unlike exec.LookPath it never consults the launcher's
// own environment, so a child environment can be searched before it exists.
func LookPathIn(environ []string, file string) (string, error) {
	if strings.ContainsRune(file, filepath.Separator) || strings.ContainsRune(file, '/') {
		// exec.LookPath with a separator checks the file itself (adding
		// PATHEXT extensions on Windows) without touching PATH.
		return exec.LookPath(file)
	}

	path, _ := LookupEnv(environ, PathEnvVar)
	for _, dir := range splitPathList(path) {
		candidate := filepath.Join(dir, file)
		if !filepath.IsAbs(candidate) {
			// A relative PATH entry would make the result depend on the
			// working directory; skip it.
			continue
		}
		resolved, err := exec.LookPath(candidate)
		if err == nil {
			return resolved, nil
		}
	}

	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

// IsNotFound reports whether err means an executable could not be found.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
