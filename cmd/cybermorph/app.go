// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"cybermorph-cli/internal/config"
	"cybermorph-cli/internal/launcher"
	"cybermorph-cli/internal/runtime"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for both binaries; command handlers receive an App and delegate
	// to the launcher through it.
	App struct {
		Config     config.Provider
		Runner     runtime.Runner
		Executable func() (string, error)
		Environ    []string
		stdin      io.Reader
		stdout     io.Writer
		stderr     io.Writer

		// Set by cybermorph-env's persistent flags, and by ui.verbose.
		verbose    bool
		configPath string
		// colorless is set once a loaded config disables color.
		colorless bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     config.Provider
		Runner     runtime.Runner
		Executable func() (string, error)
		Environ    []string
		Stdin      io.Reader
		Stdout     io.Writer
		Stderr     io.Writer
	}
)

// NewApp creates an App, filling unset dependencies with the real process.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:     deps.Config,
		Runner:     deps.Runner,
		Executable: deps.Executable,
		Environ:    deps.Environ,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Runner == nil {
		app.Runner = runtime.NewExecRunner()
	}
	if app.Executable == nil {
		app.Executable = os.Executable
	}
	if app.Environ == nil {
		app.Environ = os.Environ()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configPath}
}

// loadConfig loads the effective configuration and applies its UI settings.
func (a *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	cfg, path, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, "", &ExitError{Code: runtime.ExitCodeFailure, Err: err}
	}
	if cfg.UI.Verbose {
		a.verbose = true
	}
	if !cfg.UI.Color {
		a.colorless = true
		applyColor(cfg)
	}
	return cfg, path, nil
}

// newLauncher loads configuration and builds a Launcher over the App's
// process dependencies.
func (a *App) newLauncher(ctx context.Context) (*launcher.Launcher, error) {
	cfg, path, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	logger := newLogger(a.stderr, cfg, a.verbose)
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}

	l, err := launcher.New(launcher.Options{
		Config:     cfg,
		Executable: a.Executable,
		Runner:     a.Runner,
		Logger:     logger,
		Environ:    a.Environ,
		Stdin:      a.stdin,
		Stdout:     a.stdout,
		Stderr:     a.stderr,
	})
	if err != nil {
		return nil, &ExitError{Code: runtime.ExitCodeFailure, Err: err}
	}
	return l, nil
}

// launch runs the configured target with args untouched.
func (a *App) launch(ctx context.Context, args []string) error {
	l, err := a.newLauncher(ctx)
	if err != nil {
		return err
	}
	return resultError(l.Run(ctx, args))
}
