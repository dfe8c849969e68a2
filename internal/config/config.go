// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cybermorph-cli/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "cybermorph"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes every environment override (CYBERMORPH_TARGET, ...).
	EnvPrefix = "CYBERMORPH"
	// EnvConfigFile names the environment variable selecting the config file.
	EnvConfigFile = EnvPrefix + "_CONFIG"

	// maxConfigFileSize bounds the config file read into memory.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the cybermorph configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the config file that Load would read and whether it must
// exist. An explicit path (option or $CYBERMORPH_CONFIG) is required to
// exist; the default location is optional.
func FilePath(opts LoadOptions) (path string, explicit bool, err error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, true, nil
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		return env, true, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", false, err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), false, nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. Precedence, lowest first: defaults, config file,
// CYBERMORPH_* environment variables.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, explicit, err := FilePath(opts)
	if err != nil {
		return nil, "", err
	}

	resolvedPath := ""
	switch {
	case fileExists(path):
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'cybermorph-env config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
		resolvedPath = path
	case explicit:
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Unset " + EnvConfigFile + " to use the default location").
			Wrap(fmt.Errorf("config file not found: %s", path)).
			BuildError()
	}
	// No config file at the default location: defaults and env only.

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema, so field constraints are checked again.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for typos").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// setDefaults registers every key with viper. Keys must be known for
// AutomaticEnv overrides to reach Unmarshal.
func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("project_dir", defaults.ProjectDir)
	v.SetDefault("env_dir", defaults.EnvDir)
	v.SetDefault("interpreter", defaults.Interpreter)
	v.SetDefault("min_python", string(defaults.MinPython))
	v.SetDefault("requirements", defaults.Requirements)
	v.SetDefault("require_manifest", defaults.RequireManifest)
	v.SetDefault("project_file", defaults.ProjectFile)
	v.SetDefault("target", defaults.Target)
	v.SetDefault("editable", defaults.Editable)
	v.SetDefault("upgrade_installer", defaults.UpgradeInstaller)
	v.SetDefault("installer_args", defaults.InstallerArgs)
	v.SetDefault("readiness", string(defaults.Readiness))
	v.SetDefault("log_level", string(defaults.LogLevel))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color", defaults.UI.Color)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. Concrete(false) because every field is
// optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// formatCUEError flattens a CUE error list into "<file>: <field>: <message>"
// lines.
func formatCUEError(err error, path string) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", path, err)
	}

	lines := make([]string, 0, len(list))
	for _, e := range list {
		field := strings.Join(cueerrors.Path(e), ".")
		msg := e.Error()
		if field != "" && strings.HasPrefix(msg, field) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, field), ":"))
		}
		if field != "" {
			msg = field + ": " + msg
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", path, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", path, strings.Join(lines, "\n  "))
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to the file Load
// reads, unless it already exists. It returns the path and whether the file
// was created.
func CreateDefaultConfig(opts LoadOptions) (string, bool, error) {
	path, _, err := FilePath(opts)
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return path, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// cybermorph launcher configuration\n")
	sb.WriteString("// Every key can be overridden with a CYBERMORPH_<KEY> environment variable.\n\n")

	if cfg.ProjectDir != "" {
		fmt.Fprintf(&sb, "project_dir: %q\n", cfg.ProjectDir)
	} else {
		sb.WriteString("// project_dir: \"/opt/cybermorph\" // defaults to the launcher's directory\n")
	}

	fmt.Fprintf(&sb, "env_dir:      %q\n", cfg.EnvDir)
	fmt.Fprintf(&sb, "interpreter:  %q\n", cfg.Interpreter)
	fmt.Fprintf(&sb, "min_python:   %q\n", cfg.MinPython)
	fmt.Fprintf(&sb, "requirements: %q\n", cfg.Requirements)
	fmt.Fprintf(&sb, "project_file: %q\n", cfg.ProjectFile)
	fmt.Fprintf(&sb, "target:       %q\n", cfg.Target)

	sb.WriteString("\n// Setup\n")
	fmt.Fprintf(&sb, "require_manifest:  %v\n", cfg.RequireManifest)
	fmt.Fprintf(&sb, "editable:          %v\n", cfg.Editable)
	fmt.Fprintf(&sb, "upgrade_installer: %v\n", cfg.UpgradeInstaller)
	sb.WriteString("installer_args: [")
	for i, arg := range cfg.InstallerArgs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", arg)
	}
	sb.WriteString("]\n")
	fmt.Fprintf(&sb, "readiness: %q\n", cfg.Readiness)

	sb.WriteString("\n// Output\n")
	fmt.Fprintf(&sb, "log_level: %q\n", cfg.LogLevel)
	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor:   %v\n", cfg.UI.Color)
	sb.WriteString("}\n")

	return sb.String()
}
