// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNewLayout_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := NewLayout(dir, LayoutOptions{})

	if l.EnvDir != filepath.Join(dir, ".venv") {
		t.Errorf("EnvDir = %q", l.EnvDir)
	}
	if l.Requirements != filepath.Join(dir, "requirements.txt") {
		t.Errorf("Requirements = %q", l.Requirements)
	}
	if l.ProjectFile != filepath.Join(dir, "setup.py") {
		t.Errorf("ProjectFile = %q", l.ProjectFile)
	}
	if l.MarkerPath() != filepath.Join(dir, ".venv", MarkerFileName) {
		t.Errorf("MarkerPath() = %q", l.MarkerPath())
	}
	if l.LockPath() != filepath.Join(dir, ".venv.lock") {
		t.Errorf("LockPath() = %q", l.LockPath())
	}
}

func TestNewLayout_Overrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "shared-env")
	l := NewLayout(dir, LayoutOptions{
		EnvDir:       abs,
		Requirements: "deps/requirements-prod.txt",
		ProjectFile:  "pyproject.toml",
	})

	if l.EnvDir != abs {
		t.Errorf("absolute EnvDir must be kept, got %q", l.EnvDir)
	}
	if l.Requirements != filepath.Join(dir, "deps", "requirements-prod.txt") {
		t.Errorf("relative Requirements must resolve against the project, got %q", l.Requirements)
	}
	if l.ProjectFile != filepath.Join(dir, "pyproject.toml") {
		t.Errorf("ProjectFile = %q", l.ProjectFile)
	}
}

func TestLayout_BinDir(t *testing.T) {
	t.Parallel()

	l := NewLayout(t.TempDir(), LayoutOptions{})
	want := filepath.Join(l.EnvDir, "bin")
	if runtime.GOOS == "windows" {
		want = filepath.Join(l.EnvDir, "Scripts")
	}
	if l.BinDir() != want {
		t.Errorf("BinDir() = %q, want %q", l.BinDir(), want)
	}
}

func TestLayout_Validate(t *testing.T) {
	t.Parallel()

	project := filepath.Join(t.TempDir(), "app")
	tests := []struct {
		name    string
		envDir  string
		wantErr bool
	}{
		{name: "default", envDir: "", wantErr: false},
		{name: "nested", envDir: "build/env", wantErr: false},
		{name: "sibling", envDir: "../app-env", wantErr: false},
		{name: "dot-prefixed sibling", envDir: "../..app", wantErr: false},
		{name: "project itself", envDir: ".", wantErr: true},
		{name: "trailing slash", envDir: "./", wantErr: true},
		{name: "parent", envDir: "..", wantErr: true},
		{name: "absolute ancestor", envDir: filepath.Dir(filepath.Dir(project)), wantErr: true},
		{name: "filesystem root", envDir: string(filepath.Separator), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewLayout(project, LayoutOptions{EnvDir: tt.envDir}).Validate()
			if tt.wantErr != errors.Is(err, ErrUnsafeEnvDir) {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
