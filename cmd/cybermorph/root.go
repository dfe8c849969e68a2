// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// newLauncherCommand creates the cybermorph root command. Flag parsing is
// disabled and there are no subcommands, so every argument (including
// --help and --version) reaches the target untouched.
func newLauncherCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "cybermorph [args...]",
		Short: "Run cybermorph-auto inside its managed Python environment",
		Long: TitleStyle.Render("cybermorph") + SubtitleStyle.Render(" - setup-and-dispatch launcher") + `

On first run the launcher creates an isolated Python environment next to
itself, installs requirements.txt and the local project, then runs the
cybermorph-auto tool with all arguments unchanged. Later runs reuse the
environment. Use cybermorph-env to inspect, rebuild or remove it.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.launch(cmd.Context(), args)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// Execute runs the cybermorph launcher. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	os.Exit(runLauncher(context.Background(), app, os.Args[1:]))
}

// runLauncher runs the launcher root with args. cobra registers its shell
// completion request commands on every root, so a first argument naming one
// of them skips cobra and goes straight to the target.
func runLauncher(ctx context.Context, app *App, args []string) int {
	if len(args) > 0 && (args[0] == cobra.ShellCompRequestCmd || args[0] == cobra.ShellCompNoDescRequestCmd) {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		err := app.launch(ctx, args)
		if err != nil {
			app.handleError(app.stderr, fang.Styles{}, err)
		}
		return exitCode(err)
	}

	root := newLauncherCommand(app)
	root.SetArgs(args)
	return run(ctx, app, root)
}

// run executes root under fang and returns the process exit status.
func run(ctx context.Context, app *App, root *cobra.Command) int {
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
		fang.WithErrorHandler(app.handleError),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	return exitCode(err)
}
