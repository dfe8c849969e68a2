// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"cybermorph-cli/internal/config"
	"cybermorph-cli/internal/runtime"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `cybermorph-env config` command tree.
// Subcommands that read configuration use the App's config.Provider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage launcher configuration",
		Long: `Manage launcher configuration.

Configuration is stored in:
  - Linux: ~/.config/cybermorph/config.cue
  - macOS: ~/Library/Application Support/cybermorph/config.cue
  - Windows: %APPDATA%\cybermorph\config.cue

$CYBERMORPH_CONFIG names a different file, and every key can be
overridden with a CYBERMORPH_<KEY> environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, path, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	source := "defaults and environment"
	if path != "" {
		source = CmdStyle.Render(path)
	}
	fmt.Fprintln(app.stdout, TitleStyle.Render("Configuration")+SubtitleStyle.Render(" from ")+source)
	fmt.Fprintln(app.stdout)
	fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	return nil
}

func showConfigPath(app *App) error {
	path, _, err := config.FilePath(app.loadOptions())
	if err != nil {
		return &ExitError{Code: runtime.ExitCodeFailure, Err: err}
	}
	fmt.Fprintln(app.stdout, path)
	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig(app.loadOptions())
	if err != nil {
		return &ExitError{Code: runtime.ExitCodeFailure, Err: err}
	}
	if !created {
		fmt.Fprintln(app.stdout, WarningStyle.Render("Config file already exists: ")+CmdStyle.Render(path))
		return nil
	}
	fmt.Fprintln(app.stdout, SuccessStyle.Render("Created config file: ")+CmdStyle.Render(path))
	return nil
}
