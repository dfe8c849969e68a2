// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"cybermorph-cli/internal/config"
	"cybermorph-cli/internal/issue"
	"cybermorph-cli/internal/runtime"
	"cybermorph-cli/internal/venv"

	"github.com/charmbracelet/log"
)

type (
	// Options wires a Launcher. Zero-valued fields fall back to the real
	// process: os.Executable, an ExecRunner, os.Environ and the os stdio.
	Options struct {
		Config     *config.Config
		Executable func() (string, error)
		Runner     runtime.Runner
		Logger     *log.Logger
		Environ    []string
		Stdin      io.Reader
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// Launcher runs commands inside the project's environment.
	Launcher struct {
		cfg     *config.Config
		env     *venv.Environment
		runner  runtime.Runner
		logger  *log.Logger
		environ []string
		stdin   io.Reader
		stdout  io.Writer
		stderr  io.Writer
	}
)

// New resolves the project directory and prepares its environment. Nothing
// is created on disk until Run or Exec.
func New(opts Options) (*Launcher, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Runner == nil {
		opts.Runner = runtime.NewExecRunner()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	home, err := ResolveHome(cfg.ProjectDir, opts.Executable)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("locate project directory").
			WithIssue(issue.ProjectDirUnresolvedId).
			WithSuggestion("Set " + config.EnvPrefix + "_PROJECT_DIR to the directory holding setup.py").
			Wrap(err).
			BuildError()
	}

	venvOpts, err := environmentOptions(cfg, opts.Stderr)
	if err != nil {
		return nil, err
	}

	layout := venv.NewLayout(home, venv.LayoutOptions{
		EnvDir:       cfg.EnvDir,
		Requirements: cfg.Requirements,
		ProjectFile:  cfg.ProjectFile,
	})
	opts.Logger.Debug("project", "dir", layout.ProjectDir, "env", layout.EnvDir)

	return &Launcher{
		cfg:     cfg,
		env:     venv.NewEnvironment(layout, venvOpts, opts.Runner, opts.Logger),
		runner:  opts.Runner,
		logger:  opts.Logger,
		environ: opts.Environ,
		stdin:   opts.Stdin,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
	}, nil
}

// Environment returns the managed environment.
func (l *Launcher) Environment() *venv.Environment {
	return l.env
}

// Layout returns the resolved project layout.
func (l *Launcher) Layout() venv.Layout {
	return l.env.Layout()
}

// Environ returns the base environment commands are activated from.
func (l *Launcher) Environ() []string {
	return l.environ
}

// Run launches the configured target with args forwarded verbatim.
func (l *Launcher) Run(ctx context.Context, args []string) *runtime.Result {
	return l.Exec(ctx, l.cfg.Target, args)
}

// Exec provisions the environment if needed, then runs name inside it. The
// result carries the command's own exit status, or a launcher-side error
// with the status of the setup step that failed.
func (l *Launcher) Exec(ctx context.Context, name string, args []string) *runtime.Result {
	act, err := l.env.Acquire(ctx, l.environ)
	if err != nil {
		return setupFailure(l.env.Layout(), err)
	}
	defer func() {
		if err := act.Release(); err != nil {
			l.logger.Warn("failed to release environment", "error", err)
		}
	}()

	inv, err := act.Command(name, args)
	if err != nil {
		code := runtime.ExitCodeFailure
		if runtime.IsNotFound(err) {
			code = runtime.ExitCodeNotFound
		}
		return runtime.NewErrorResult(code, issue.NewErrorContext().
			WithOperation("find "+name).
			WithResource(l.env.Layout().BinDir()).
			WithIssue(issue.TargetNotFoundId).
			WithSuggestion("Run 'cybermorph-env provision --force' to reinstall the project").
			Wrap(err).
			BuildError())
	}
	inv.Stdin = l.stdin
	inv.Stdout = l.stdout
	inv.Stderr = l.stderr

	l.logger.Debug("exec", "cmd", inv.String())
	code, err := l.runner.Run(ctx, inv)
	if err != nil {
		return runtime.NewErrorResult(code, issue.NewErrorContext().
			WithOperation("run "+name).
			WithResource(inv.Path).
			WithIssue(startIssue(err)).
			Wrap(err).
			BuildError())
	}
	l.logger.Debug("exited", "cmd", name, "status", code)
	return runtime.NewExitCodeResult(code)
}

// Provision builds the environment without running anything; force
// rebuilds a ready one. It reports whether anything was built.
func (l *Launcher) Provision(ctx context.Context, force bool) (bool, *runtime.Result) {
	built, err := l.env.Provision(ctx, l.environ, force)
	if err != nil {
		return false, setupFailure(l.env.Layout(), err)
	}
	return built, runtime.NewSuccessResult()
}

// Reset removes the environment once no launcher is using it.
func (l *Launcher) Reset(ctx context.Context) *runtime.Result {
	if err := l.env.Reset(ctx); err != nil {
		return setupFailure(l.env.Layout(), err)
	}
	return runtime.NewSuccessResult()
}

// environmentOptions maps configuration onto provisioning options.
func environmentOptions(cfg *config.Config, setupOutput io.Writer) (venv.Options, error) {
	opts := venv.DefaultOptions()
	opts.Interpreter = cfg.Interpreter
	opts.UpgradeInstaller = cfg.UpgradeInstaller
	opts.Editable = cfg.Editable
	opts.RequireManifest = cfg.RequireManifest
	opts.InstallerArgs = cfg.InstallerArgs
	opts.Readiness = venv.Readiness(cfg.Readiness)
	opts.SetupOutput = setupOutput

	opts.MinPython = venv.PythonVersion{}
	if cfg.MinPython != "" {
		v, err := venv.ParsePythonVersion(string(cfg.MinPython))
		if err != nil {
			return venv.Options{}, issue.NewErrorContext().
				WithOperation("read configuration").
				WithResource("min_python").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		opts.MinPython = v
	}
	return opts, nil
}

// setupFailure converts an Acquire error into the launcher's result.
func setupFailure(layout venv.Layout, err error) *runtime.Result {
	var (
		stepErr     *venv.StepError
		manifestErr *venv.ManifestNotFoundError
		unsafeErr   *venv.UnsafeEnvDirError
	)

	switch {
	case errors.As(err, &stepErr):
		code := stepErr.ExitCode
		if code.IsSuccess() {
			code = runtime.ExitCodeFailure
		}
		ec := issue.NewErrorContext().
			WithOperation(string(stepErr.Step)).
			WithResource(layout.EnvDir).
			Wrap(err)
		switch {
		case stepErr.Step == venv.StepProbeInterpreter && runtime.IsNotFound(err):
			ec.WithIssue(issue.InterpreterNotFoundId).
				WithSuggestion("Install Python 3 or set " + config.EnvPrefix + "_INTERPRETER")
		case errors.Is(err, venv.ErrInterpreterTooOld):
			ec.WithIssue(issue.InterpreterTooOldId)
		default:
			ec.WithIssue(issue.SetupStepFailedId).
				WithSuggestion("Run 'cybermorph-env provision --force' after fixing the problem")
		}
		return runtime.NewErrorResult(code, ec.BuildError())

	case errors.As(err, &manifestErr):
		return runtime.NewErrorResult(runtime.ExitCodeFailure, issue.NewErrorContext().
			WithOperation("find "+manifestErr.Kind).
			WithResource(manifestErr.Path).
			WithIssue(issue.ManifestNotFoundId).
			Wrap(err).
			BuildError())

	case errors.As(err, &unsafeErr):
		return runtime.NewErrorResult(runtime.ExitCodeFailure, issue.NewErrorContext().
			WithOperation("prepare environment").
			WithResource(unsafeErr.Path).
			WithIssue(issue.UnsafeEnvDirId).
			WithSuggestion("Set env_dir (or "+config.EnvPrefix+"_ENV_DIR) to a directory used only for the environment").
			Wrap(err).
			BuildError())

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return runtime.NewErrorResult(runtime.ExitCodeFailure, issue.NewErrorContext().
			WithOperation("acquire environment").
			WithResource(layout.LockPath()).
			WithIssue(issue.EnvironmentLockedId).
			Wrap(err).
			BuildError())

	case errors.Is(err, fs.ErrPermission):
		return runtime.NewErrorResult(runtime.ExitCodeFailure, issue.NewErrorContext().
			WithOperation("prepare environment").
			WithResource(layout.EnvDir).
			WithIssue(issue.PermissionDeniedId).
			Wrap(err).
			BuildError())

	default:
		return runtime.NewErrorResult(runtime.ExitCodeFailure, fmt.Errorf("prepare environment %s: %w", layout.EnvDir, err))
	}
}

func startIssue(err error) issue.Id {
	switch {
	case runtime.IsNotFound(err), errors.Is(err, fs.ErrNotExist):
		return issue.TargetNotFoundId
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	default:
		return 0
	}
}
