// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidPythonVersion is returned when a version string cannot be parsed.
var ErrInvalidPythonVersion = errors.New("invalid python version")

// pythonVersionPattern matches "3.11", "3.11.4" and the interpreter banner
// "Python 3.11.4".
var pythonVersionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// PythonVersion is a major.minor.patch interpreter version.
// The zero value means "unknown" and satisfies every minimum.
type PythonVersion struct {
	Major, Minor, Patch int
}

// ParsePythonVersion extracts the first version number found in s.
func ParsePythonVersion(s string) (PythonVersion, error) {
	m := pythonVersionPattern.FindStringSubmatch(s)
	if m == nil {
		return PythonVersion{}, fmt.Errorf("%w: %q", ErrInvalidPythonVersion, s)
	}
	var v PythonVersion
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
	}
	return v, nil
}

// IsZero reports whether v is the unknown version.
func (v PythonVersion) IsZero() bool {
	return v == PythonVersion{}
}

// Less reports whether v is older than o.
func (v PythonVersion) Less(o PythonVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// String returns the dotted version.
func (v PythonVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
