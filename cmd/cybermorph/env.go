// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cybermorph-cli/internal/runtime"
	"cybermorph-cli/internal/venv"

	"github.com/spf13/cobra"
)

// ExecuteEnv runs the cybermorph-env environment manager.
func ExecuteEnv() {
	app := NewApp(Dependencies{})
	os.Exit(run(context.Background(), app, newEnvCommand(app)))
}

// newEnvCommand creates the cybermorph-env command tree.
func newEnvCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "cybermorph-env",
		Short: "Manage the cybermorph launcher environment",
		Long: TitleStyle.Render("cybermorph-env") + SubtitleStyle.Render(" - manage the launcher environment") + `

The launcher itself forwards every argument to cybermorph-auto, so all
environment management lives here.

` + SubtitleStyle.Render("Examples:") + `
  cybermorph-env status             Show the environment and its marker
  cybermorph-env provision --force  Rebuild the environment
  cybermorph-env exec -- pip list   Run a command inside the environment
  cybermorph-env reset              Remove the environment`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is <config dir>/cybermorph/config.cue)")

	root.AddCommand(
		newProvisionCommand(app),
		newStatusCommand(app),
		newResetCommand(app),
		newExecCommand(app),
		newPathCommand(app),
		newConfigCommand(app),
	)
	return root
}

func newProvisionCommand(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create the environment if it is not ready",
		Long: `Create the environment and install its requirements without running
anything. A ready environment is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.newLauncher(cmd.Context())
			if err != nil {
				return err
			}
			built, res := l.Provision(cmd.Context(), force)
			if err := resultError(res); err != nil {
				return err
			}
			envDir := CmdStyle.Render(l.Layout().EnvDir)
			if built {
				fmt.Fprintln(app.stdout, SuccessStyle.Render("✓")+" Environment ready at "+envDir)
			} else {
				fmt.Fprintln(app.stdout, "Environment already provisioned at "+envDir)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "remove and rebuild a ready environment")
	return cmd
}

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the environment layout and readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.newLauncher(cmd.Context())
			if err != nil {
				return err
			}
			st, err := l.Environment().Status()
			if err != nil {
				return &ExitError{Code: runtime.ExitCodeFailure, Err: fmt.Errorf("failed to inspect environment: %w", err)}
			}
			renderStatus(app.stdout, st)
			return nil
		},
	}
}

func newResetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove the environment",
		Long: `Remove the environment directory and its readiness marker. Waits for
running launchers to finish first. The next launch provisions from scratch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.newLauncher(cmd.Context())
			if err != nil {
				return err
			}
			if err := resultError(l.Reset(cmd.Context())); err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, SuccessStyle.Render("✓")+" Removed "+CmdStyle.Render(l.Layout().EnvDir))
			return nil
		},
	}
}

func newExecCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec -- <command> [args...]",
		Short: "Run a command inside the activated environment",
		Long: `Run a command inside the activated environment, provisioning it first
if needed. The command's exit status becomes cybermorph-env's own.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.newLauncher(cmd.Context())
			if err != nil {
				return err
			}
			return resultError(l.Exec(cmd.Context(), args[0], args[1:]))
		},
	}
	// Flags after the command name belong to the command.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the environment directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.newLauncher(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, l.Layout().EnvDir)
			return nil
		},
	}
}

// renderStatus prints an environment snapshot.
func renderStatus(w io.Writer, st venv.Status) {
	row := func(label, value string) {
		pad := strings.Repeat(" ", max(1, 14-len(label)))
		fmt.Fprintf(w, "  %s%s%s\n", SubtitleStyle.Render(label+":"), pad, value)
	}

	fmt.Fprintln(w, TitleStyle.Render("Environment"))
	row("Project", CmdStyle.Render(st.Layout.ProjectDir))
	row("Environment", CmdStyle.Render(st.Layout.EnvDir))
	row("Requirements", st.Layout.Requirements)
	row("Project file", st.Layout.ProjectFile)
	row("Readiness", string(st.Readiness))

	state := st.State.String()
	switch st.State {
	case venv.StateReady:
		state = SuccessStyle.Render(state)
	case venv.StateIncomplete:
		state = WarningStyle.Render(state + " (rebuilt on next launch)")
	}
	row("State", state)

	if m := st.Marker; m != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, TitleStyle.Render("Marker"))
		row("Provisioned", m.CreatedAt.Local().Format(time.RFC3339))
		python := m.Interpreter
		if m.PythonVersion != "" {
			python = m.PythonVersion + " (" + m.Interpreter + ")"
		}
		row("Python", python)
		row("Editable", fmt.Sprintf("%t", m.Editable))
	}

	if len(st.Stale) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, WarningStyle.Render("Changed since provisioning: "+strings.Join(st.Stale, ", ")))
		fmt.Fprintln(w, SubtitleStyle.Render("Run ")+CmdStyle.Render("cybermorph-env provision --force")+SubtitleStyle.Render(" to apply the changes."))
	}
}
