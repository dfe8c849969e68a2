// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestReadinessMode_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode ReadinessMode
		want bool
	}{
		{ReadinessMarker, true},
		{ReadinessDirectory, true},
		{"", false},
		{"MARKER", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.mode.IsValid()
			if isValid != tt.want {
				t.Errorf("ReadinessMode(%q).IsValid() = %v, want %v", tt.mode, isValid, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidReadinessMode)) {
				t.Errorf("error should wrap ErrInvalidReadinessMode, got: %v", errs)
			}
		})
	}
}

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()

	for _, level := range []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError} {
		if ok, errs := level.IsValid(); !ok {
			t.Errorf("LogLevel(%q).IsValid() = false: %v", level, errs)
		}
	}
	ok, errs := LogLevel("trace").IsValid()
	if ok || !errors.Is(errs[0], ErrInvalidLogLevel) {
		t.Errorf("LogLevel(trace).IsValid() = %v, %v", ok, errs)
	}
}

func TestVersionSpec_IsValid(t *testing.T) {
	t.Parallel()

	for _, v := range []VersionSpec{"", "3.8", "3.12.1"} {
		if ok, errs := v.IsValid(); !ok {
			t.Errorf("VersionSpec(%q).IsValid() = false: %v", v, errs)
		}
	}
	for _, v := range []VersionSpec{"3", "3.x", ">=3.8", " 3.8"} {
		if ok, errs := v.IsValid(); ok || !errors.Is(errs[0], ErrInvalidVersionSpec) {
			t.Errorf("VersionSpec(%q).IsValid() = %v, %v", v, ok, errs)
		}
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Target = "  "
	cfg.LogLevel = "loud"

	ok, errs := cfg.IsValid()
	if ok {
		t.Fatal("expected invalid config")
	}
	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("expected *InvalidConfigError, got %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 2 {
		t.Errorf("FieldErrors = %v, want 2", cfgErr.FieldErrors)
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Error("should wrap ErrInvalidConfig")
	}
	if !errors.Is(cfgErr.FieldErrors[0], ErrInvalidLogLevel) || !errors.Is(cfgErr.FieldErrors[1], ErrEmptyField) {
		t.Errorf("unexpected field errors: %v", cfgErr.FieldErrors)
	}
}

func TestConfig_IsValid_EnvDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		envDir string
		valid  bool
	}{
		{".venv", true},
		{"../shared-env", true},
		{"/var/lib/cybermorph/venv", true},
		{".", false},
		{"./", false},
		{"..", false},
		{"../", false},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.EnvDir = tt.envDir
		ok, errs := cfg.IsValid()
		if ok != tt.valid {
			t.Errorf("IsValid() with env_dir %q = %v, want %v", tt.envDir, ok, tt.valid)
			continue
		}
		if !tt.valid && !errors.Is(errs[0], ErrInvalidEnvDir) {
			t.Errorf("env_dir %q: expected ErrInvalidEnvDir, got %v", tt.envDir, errs)
		}
	}
}
