// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// SkipOnWindows skips tests that rely on POSIX executable bits or paths.
func SkipOnWindows(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires POSIX executable semantics")
	}
}

// MustMkdirAll creates a directory along with any necessary parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustWriteExecutable writes an executable script to path, creating parent
// directories.
func MustWriteExecutable(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// Project is a temporary launcher home with a manifest, a project definition
// and a directory holding a stub base interpreter.
type Project struct {
	// Dir is the project directory.
	Dir string
	// SystemBin holds the stub "python3" found on BaseEnv's PATH.
	SystemBin string
	// BaseEnv is the environment a launcher would inherit.
	BaseEnv []string
}

// NewProject creates a project with requirements.txt and setup.py.
func NewProject(t testing.TB) *Project {
	t.Helper()
	SkipOnWindows(t)

	root := t.TempDir()
	p := &Project{
		Dir:       filepath.Join(root, "project"),
		SystemBin: filepath.Join(root, "sysbin"),
	}
	MustWriteFile(t, filepath.Join(p.Dir, "requirements.txt"), "pyyaml>=6.0\nrequests>=2.28\n")
	MustWriteFile(t, filepath.Join(p.Dir, "setup.py"), "from setuptools import setup\nsetup(name='cybermorph')\n")
	MustWriteExecutable(t, filepath.Join(p.SystemBin, "python3"), "#!/bin/sh\nexit 0\n")
	p.BaseEnv = []string{
		"PATH=" + p.SystemBin,
		"HOME=" + root,
		"PYTHONHOME=/should/be/removed",
	}
	return p
}
