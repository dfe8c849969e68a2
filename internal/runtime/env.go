// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
)

// PathEnvVar is the name of the executable search path variable.
const PathEnvVar = "PATH"

// LookupEnv returns the value of key in environ.
// Later entries win, matching how the OS resolves duplicates.
func LookupEnv(environ []string, key string) (string, bool) {
	value, found := "", false
	for _, e := range environ {
		name, v, ok := strings.Cut(e, "=")
		if ok && envKeyEqual(name, key) {
			value, found = v, true
		}
	}
	return value, found
}

// SetEnv returns a copy of environ with every entry for key replaced by a
// single key=value entry appended at the end.
func SetEnv(environ []string, key, value string) []string {
	return append(UnsetEnv(environ, key), key+"="+value)
}

// UnsetEnv returns a copy of environ without any entry for key.
// Malformed entries (without '=') are kept.
func UnsetEnv(environ []string, key string) []string {
	result := make([]string, 0, len(environ)+1)
	for _, e := range environ {
		if name, _, ok := strings.Cut(e, "="); ok && envKeyEqual(name, key) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// PrependPath returns a copy of environ whose PATH starts with dir.
func PrependPath(environ []string, dir string) []string {
	key := PathEnvVar
	for _, e := range environ {
		// Windows spells it "Path"; keep whatever spelling the parent used.
		if name, _, ok := strings.Cut(e, "="); ok && envKeyEqual(name, PathEnvVar) {
			key = name
		}
	}

	current, _ := LookupEnv(environ, PathEnvVar)
	if current == "" {
		return SetEnv(environ, key, dir)
	}
	return SetEnv(environ, key, dir+string(os.PathListSeparator)+current)
}

// envKeyEqual compares environment variable names the way the OS does.
func envKeyEqual(a, b string) bool {
	if goruntime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// splitPathList splits a PATH value, treating empty elements as "." the way
// POSIX shells do.
func splitPathList(path string) []string {
	if path == "" {
		return nil
	}
	dirs := filepath.SplitList(path)
	for i, d := range dirs {
		if d == "" {
			dirs[i] = "."
		}
	}
	return dirs
}
