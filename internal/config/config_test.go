// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"cybermorph-cli/internal/issue"
	"cybermorph-cli/internal/testutil"
)

// isolate points the loader at an empty config dir and clears every
// CYBERMORPH_* override inherited from the developer's shell.
func isolate(t *testing.T) LoadOptions {
	t.Helper()
	for _, env := range os.Environ() {
		if key, _, ok := strings.Cut(env, "="); ok && strings.HasPrefix(key, EnvPrefix+"_") {
			t.Setenv(key, "")
		}
	}
	return LoadOptions{ConfigDirPath: t.TempDir()}
}

func load(t *testing.T, opts LoadOptions) (*Config, string, error) {
	t.Helper()
	return NewProvider().Load(context.Background(), opts)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.EnvDir != ".venv" || cfg.Interpreter != "python3" || cfg.Target != "cybermorph-auto" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.MinPython != "3.8" {
		t.Errorf("MinPython = %q, want 3.8", cfg.MinPython)
	}
	if !cfg.Editable || !cfg.UpgradeInstaller || !cfg.RequireManifest {
		t.Error("setup defaults must match the bootstrap script")
	}
	if cfg.Readiness != ReadinessMarker || cfg.LogLevel != LogLevelInfo {
		t.Errorf("Readiness = %q, LogLevel = %q", cfg.Readiness, cfg.LogLevel)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig() is invalid: %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-specific")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")
	t.Setenv(EnvConfigFile, "")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}

	path, explicit, err := FilePath(LoadOptions{ConfigDirPath: "/tmp/override"})
	if err != nil || explicit {
		t.Fatalf("FilePath() = %q, %v, %v", path, explicit, err)
	}
	if want := filepath.Join("/tmp/override", "config.cue"); path != want {
		t.Errorf("FilePath() with dir override = %s, want %s", path, want)
	}
}

func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	opts := isolate(t)

	cfg, path, err := load(t, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want none", path)
	}
	if cfg.Target != "cybermorph-auto" || cfg.Readiness != ReadinessMarker || !cfg.UI.Color {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_FileValues(t *testing.T) {
	opts := isolate(t)
	cfgPath := filepath.Join(opts.ConfigDirPath, "config.cue")
	testutil.MustWriteFile(t, cfgPath, `
env_dir:        "/var/lib/cybermorph/venv"
target:         "cybermorph-manual"
min_python:     "3.10"
editable:       false
installer_args: ["--index-url", "https://pypi.example.test/simple"]
readiness:      "directory"
ui: verbose:    true
`)

	cfg, path, err := load(t, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != cfgPath {
		t.Errorf("resolved path = %q, want %q", path, cfgPath)
	}
	if cfg.EnvDir != "/var/lib/cybermorph/venv" || cfg.Target != "cybermorph-manual" || cfg.MinPython != "3.10" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Editable || cfg.Readiness != ReadinessDirectory || !cfg.UI.Verbose {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if !slices.Equal(cfg.InstallerArgs, []string{"--index-url", "https://pypi.example.test/simple"}) {
		t.Errorf("InstallerArgs = %q", cfg.InstallerArgs)
	}
	// Unset keys keep their defaults.
	if cfg.Interpreter != "python3" || !cfg.UpgradeInstaller || !cfg.UI.Color {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	opts := isolate(t)
	testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `
target:    "from-file"
log_level: "warn"
`)
	t.Setenv("CYBERMORPH_TARGET", "from-env")
	t.Setenv("CYBERMORPH_PROJECT_DIR", "/opt/cybermorph")
	t.Setenv("CYBERMORPH_UPGRADE_INSTALLER", "false")
	t.Setenv("CYBERMORPH_UI_VERBOSE", "true")

	cfg, _, err := load(t, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Target != "from-env" {
		t.Errorf("Target = %q, environment must win over the file", cfg.Target)
	}
	if cfg.LogLevel != LogLevelWarn {
		t.Errorf("LogLevel = %q, want file value", cfg.LogLevel)
	}
	if cfg.ProjectDir != "/opt/cybermorph" || cfg.UpgradeInstaller || !cfg.UI.Verbose {
		t.Errorf("environment overrides not applied: %+v", cfg)
	}
}

func TestLoad_InvalidEnvironmentOverride(t *testing.T) {
	opts := isolate(t)
	t.Setenv("CYBERMORPH_READINESS", "mtime")

	_, _, err := load(t, opts)
	if !errors.Is(err, ErrInvalidReadinessMode) {
		t.Fatalf("expected ErrInvalidReadinessMode, got %v", err)
	}
	if got := issue.IssueOf(err); got == nil || got.Id() != issue.ConfigLoadFailedId {
		t.Error("error must link the config issue")
	}
}

func TestLoad_EnvDirOverrideRejected(t *testing.T) {
	opts := isolate(t)
	t.Setenv("CYBERMORPH_ENV_DIR", ".")

	_, _, err := load(t, opts)
	if !errors.Is(err, ErrInvalidEnvDir) {
		t.Fatalf("expected ErrInvalidEnvDir, got %v", err)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown field", content: "container_engine: \"docker\"\n", want: "container_engine"},
		{name: "wrong type", content: "editable: \"yes\"\n", want: "editable"},
		{name: "bad enum", content: "readiness: \"sometimes\"\n", want: "readiness"},
		{name: "bad version", content: "min_python: \"three\"\n", want: "min_python"},
		{name: "syntax error", content: "target: \n", want: "config.cue"},
		{name: "project as env dir", content: "env_dir: \".\"\n", want: "env_dir"},
		{name: "parent as env dir", content: "env_dir: \"../\"\n", want: "env_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := isolate(t)
			testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), tt.content)

			_, _, err := load(t, opts)
			if err == nil {
				t.Fatal("expected an error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *issue.ActionableError, got %T", err)
			}
			if ae.Operation != "load configuration" || ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("unexpected ActionableError: %+v", ae)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	opts := isolate(t)
	custom := filepath.Join(t.TempDir(), "custom.cue")
	testutil.MustWriteFile(t, custom, "target: \"from-custom\"\n")

	t.Run("option", func(t *testing.T) {
		cfg, path, err := load(t, LoadOptions{ConfigFilePath: custom, ConfigDirPath: opts.ConfigDirPath})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Target != "from-custom" || path != custom {
			t.Errorf("Target = %q, path = %q", cfg.Target, path)
		}
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv(EnvConfigFile, custom)
		cfg, path, err := load(t, opts)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Target != "from-custom" || path != custom {
			t.Errorf("Target = %q, path = %q", cfg.Target, path)
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.cue")
		t.Setenv(EnvConfigFile, missing)

		_, _, err := load(t, opts)
		if err == nil {
			t.Fatal("expected error for a missing explicit config file")
		}
		if !strings.Contains(err.Error(), "config file not found") || !strings.Contains(err.Error(), missing) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	opts := isolate(t)
	opts.ConfigDirPath = filepath.Join(opts.ConfigDirPath, "nested")

	path, created, err := CreateDefaultConfig(opts)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created || path != filepath.Join(opts.ConfigDirPath, "config.cue") {
		t.Errorf("CreateDefaultConfig() = %q, %v", path, created)
	}

	// The generated file passes the schema and yields the defaults.
	cfg, resolved, err := load(t, opts)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	want := DefaultConfig()
	if cfg.Target != want.Target || cfg.MinPython != want.MinPython || cfg.UI != want.UI || cfg.Readiness != want.Readiness {
		t.Errorf("round trip changed values: %+v", cfg)
	}

	// A second call leaves the existing file alone.
	testutil.MustWriteFile(t, path, "target: \"customized\"\n")
	if _, created, err := CreateDefaultConfig(opts); err != nil || created {
		t.Errorf("second CreateDefaultConfig() = %v, %v", created, err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "customized") {
		t.Error("existing config overwritten")
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ProjectDir = "/opt/cybermorph"
	cfg.InstallerArgs = []string{"--pre", "--no-cache-dir"}

	out := GenerateCUE(cfg)
	for _, want := range []string{
		`project_dir: "/opt/cybermorph"`,
		`installer_args: ["--pre", "--no-cache-dir"]`,
		`readiness: "marker"`,
		"\tcolor:   true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() missing %q:\n%s", want, out)
		}
	}
}
