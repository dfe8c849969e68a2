// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// ReadinessMarker treats the environment as ready once setup wrote its
	// completion marker. Interrupted setups are detected and rebuilt.
	ReadinessMarker ReadinessMode = "marker"
	// ReadinessDirectory treats any existing environment directory as ready.
	ReadinessDirectory ReadinessMode = "directory"

	// LogLevelDebug logs every launcher decision.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs setup steps.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only problems that do not stop the launch.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only failures.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidReadinessMode is returned when a ReadinessMode value is not recognized.
	ErrInvalidReadinessMode = errors.New("invalid readiness mode")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidVersionSpec is returned when a VersionSpec is not "X.Y" or "X.Y.Z".
	ErrInvalidVersionSpec = errors.New("invalid version")
	// ErrInvalidEnvDir is returned when env_dir names the project directory
	// or its parent.
	ErrInvalidEnvDir = errors.New("must not be the project directory or its parent")
	// ErrEmptyField is returned when a required string field is blank.
	ErrEmptyField = errors.New("must not be empty")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	versionSpecPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)
)

type (
	// ReadinessMode selects how the launcher decides an environment is usable.
	ReadinessMode string

	// LogLevel is the minimum level of launcher log output.
	LogLevel string

	// VersionSpec is a minimum interpreter version such as "3.8".
	// The zero value disables the check.
	VersionSpec string

	// InvalidValueError reports an unrecognized value for a config key.
	// It wraps the key's sentinel error for errors.Is() compatibility.
	InvalidValueError struct {
		Key      string
		Value    string
		Sentinel error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the launcher configuration.
	Config struct {
		// ProjectDir overrides the launcher's home. Empty means the directory
		// holding the launcher executable.
		ProjectDir string `json:"project_dir" mapstructure:"project_dir"`
		// EnvDir is the environment directory, relative to the project.
		EnvDir string `json:"env_dir" mapstructure:"env_dir"`
		// Interpreter is the base Python used to create the environment.
		Interpreter string `json:"interpreter" mapstructure:"interpreter"`
		// MinPython is the oldest accepted base interpreter.
		MinPython VersionSpec `json:"min_python" mapstructure:"min_python"`
		// Requirements is the dependency manifest, relative to the project.
		Requirements string `json:"requirements" mapstructure:"requirements"`
		// RequireManifest makes a missing requirements manifest fatal.
		RequireManifest bool `json:"require_manifest" mapstructure:"require_manifest"`
		// ProjectFile is the project definition, relative to the project.
		ProjectFile string `json:"project_file" mapstructure:"project_file"`
		// Target is the executable run inside the environment.
		Target string `json:"target" mapstructure:"target"`
		// Editable installs the project in development mode.
		Editable bool `json:"editable" mapstructure:"editable"`
		// UpgradeInstaller upgrades pip before installing dependencies.
		UpgradeInstaller bool `json:"upgrade_installer" mapstructure:"upgrade_installer"`
		// InstallerArgs are extra arguments for every pip install.
		InstallerArgs []string `json:"installer_args" mapstructure:"installer_args"`
		// Readiness selects the readiness signal.
		Readiness ReadinessMode `json:"readiness" mapstructure:"readiness"`
		// LogLevel is the launcher's log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose forces debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Color enables styled output.
		Color bool `json:"color" mapstructure:"color"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ProjectDir:       "", // Resolved from the executable location
		EnvDir:           ".venv",
		Interpreter:      "python3",
		MinPython:        "3.8",
		Requirements:     "requirements.txt",
		RequireManifest:  true,
		ProjectFile:      "setup.py",
		Target:           "cybermorph-auto",
		Editable:         true,
		UpgradeInstaller: true,
		InstallerArgs:    []string{},
		Readiness:        ReadinessMarker,
		LogLevel:         LogLevelInfo,
		UI: UIConfig{
			Verbose: false,
			Color:   true,
		},
	}
}

// IsValid returns whether the ReadinessMode is a known mode.
func (m ReadinessMode) IsValid() (bool, []error) {
	switch m {
	case ReadinessMarker, ReadinessDirectory:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Key: "readiness", Value: string(m), Sentinel: ErrInvalidReadinessMode}}
	}
}

// IsValid returns whether the LogLevel is a known level.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Key: "log_level", Value: string(l), Sentinel: ErrInvalidLogLevel}}
	}
}

// IsValid returns whether the VersionSpec is empty or a dotted version.
func (v VersionSpec) IsValid() (bool, []error) {
	if v == "" || versionSpecPattern.MatchString(string(v)) {
		return true, nil
	}
	return false, []error{&InvalidValueError{Key: "min_python", Value: string(v), Sentinel: ErrInvalidVersionSpec}}
}

// IsValid validates every field that has constraints beyond its Go type.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	for _, check := range []func() (bool, []error){
		c.Readiness.IsValid,
		c.LogLevel.IsValid,
		c.MinPython.IsValid,
	} {
		if valid, fieldErrs := check(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, field := range []struct{ key, value string }{
		{"env_dir", c.EnvDir},
		{"interpreter", c.Interpreter},
		{"requirements", c.Requirements},
		{"project_file", c.ProjectFile},
		{"target", c.Target},
	} {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, &InvalidValueError{Key: field.key, Value: field.value, Sentinel: ErrEmptyField})
		}
	}
	if dir := filepath.Clean(c.EnvDir); strings.TrimSpace(c.EnvDir) != "" && (dir == "." || dir == "..") {
		errs = append(errs, &InvalidValueError{Key: "env_dir", Value: c.EnvDir, Sentinel: ErrInvalidEnvDir})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %v: %q", e.Key, e.Sentinel, e.Value)
}

// Unwrap returns the key's sentinel error.
func (e *InvalidValueError) Unwrap() error { return e.Sentinel }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the config sentinel and each field's sentinel.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
