// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"path/filepath"
	goruntime "runtime"
	"strings"
)

const (
	// DefaultEnvDir is the environment directory name relative to the project.
	DefaultEnvDir = ".venv"
	// DefaultRequirements is the dependency manifest relative to the project.
	DefaultRequirements = "requirements.txt"
	// DefaultProjectFile is the project definition relative to the project.
	DefaultProjectFile = "setup.py"
	// MarkerFileName is the readiness marker written inside the environment.
	MarkerFileName = "cybermorph-ready.toml"
	// PyvenvConfigFileName is written by "python -m venv" before anything
	// else; its presence identifies a directory as a virtual environment.
	PyvenvConfigFileName = "pyvenv.cfg"
	// lockFileSuffix is appended to the environment path to name its lock file.
	// The lock lives next to the environment so removing the environment
	// never removes a lock another process is holding.
	lockFileSuffix = ".lock"
)

type (
	// Layout locates everything the launcher reads or writes. All paths are
	// absolute once built by NewLayout.
	Layout struct {
		// ProjectDir is the launcher's home: the directory holding the
		// manifest and project definition.
		ProjectDir string
		// EnvDir is the isolated environment root.
		EnvDir string
		// Requirements is the dependency manifest.
		Requirements string
		// ProjectFile is the project definition installed in editable mode.
		ProjectFile string
	}

	// LayoutOptions overrides the default file names. Relative values are
	// resolved against the project directory; empty values use the defaults.
	LayoutOptions struct {
		EnvDir       string
		Requirements string
		ProjectFile  string
	}
)

// NewLayout builds a Layout rooted at projectDir.
func NewLayout(projectDir string, opts LayoutOptions) Layout {
	projectDir = filepath.Clean(projectDir)
	return Layout{
		ProjectDir:   projectDir,
		EnvDir:       resolveIn(projectDir, opts.EnvDir, DefaultEnvDir),
		Requirements: resolveIn(projectDir, opts.Requirements, DefaultRequirements),
		ProjectFile:  resolveIn(projectDir, opts.ProjectFile, DefaultProjectFile),
	}
}

// BinDir returns the directory holding the environment's executables.
func (l Layout) BinDir() string {
	if goruntime.GOOS == "windows" {
		return filepath.Join(l.EnvDir, "Scripts")
	}
	return filepath.Join(l.EnvDir, "bin")
}

// Python returns the environment's interpreter.
func (l Layout) Python() string {
	if goruntime.GOOS == "windows" {
		return filepath.Join(l.BinDir(), "python.exe")
	}
	return filepath.Join(l.BinDir(), "python")
}

// MarkerPath returns the readiness marker location.
func (l Layout) MarkerPath() string {
	return filepath.Join(l.EnvDir, MarkerFileName)
}

// Validate reports an UnsafeEnvDirError when EnvDir is the project
// directory or one of its ancestors. Such a layout would make a rebuild
// remove the project itself.
func (l Layout) Validate() error {
	rel, err := filepath.Rel(l.EnvDir, l.ProjectDir)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return &UnsafeEnvDirError{Path: l.EnvDir, Reason: "it contains the project directory " + l.ProjectDir}
	}
	return nil
}

// LockPath returns the cross-process lock file location.
func (l Layout) LockPath() string {
	return l.EnvDir + lockFileSuffix
}

func resolveIn(base, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(base, value)
}
