// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"cybermorph-cli/internal/runtime"

	"github.com/charmbracelet/log"
)

// Setup step names, in execution order.
const (
	StepProbeInterpreter    StepName = "probe interpreter"
	StepCreateEnvironment   StepName = "create environment"
	StepUpgradeInstaller    StepName = "upgrade installer"
	StepInstallRequirements StepName = "install requirements"
	StepInstallProject      StepName = "install project"
	StepWriteMarker         StepName = "write readiness marker"
)

// DefaultInterpreter is the base interpreter used to create environments.
const DefaultInterpreter = "python3"

type (
	// StepName identifies a setup step in logs and errors.
	StepName string

	// Step is one planned setup command.
	Step struct {
		Name StepName
		Path string
		Args []string
	}

	// Options controls how environments are built and judged ready.
	Options struct {
		// Interpreter creates the environment (name or path).
		Interpreter string
		// MinPython is the oldest acceptable interpreter. Zero disables the check.
		MinPython PythonVersion
		// UpgradeInstaller upgrades pip before installing anything.
		UpgradeInstaller bool
		// Editable installs the project in development mode.
		Editable bool
		// RequireManifest makes a missing requirements manifest fatal.
		// When false the requirements step is skipped with a warning.
		RequireManifest bool
		// InstallerArgs are extra pip arguments for every install step
		// (e.g. an index URL).
		InstallerArgs []string
		// Readiness selects the readiness signal.
		Readiness Readiness
		// SetupOutput receives the output of setup commands. It defaults to
		// os.Stderr so that setup noise never mixes into the target's stdout.
		SetupOutput io.Writer
	}

	// Provisioner builds an environment from scratch. It assumes the caller
	// holds the exclusive lock and that the environment directory is absent.
	Provisioner struct {
		layout Layout
		opts   Options
		runner runtime.Runner
		logger *log.Logger
		now    func() time.Time
	}
)

// DefaultOptions returns the options matching the classic bootstrap script.
func DefaultOptions() Options {
	return Options{
		Interpreter:      DefaultInterpreter,
		MinPython:        PythonVersion{Major: 3, Minor: 8},
		UpgradeInstaller: true,
		Editable:         true,
		RequireManifest:  true,
		Readiness:        ReadinessMarker,
	}
}

// NewProvisioner creates a Provisioner for layout.
func NewProvisioner(layout Layout, opts Options, runner runtime.Runner, logger *log.Logger) *Provisioner {
	if opts.Interpreter == "" {
		opts.Interpreter = DefaultInterpreter
	}
	if opts.SetupOutput == nil {
		opts.SetupOutput = os.Stderr
	}
	return &Provisioner{
		layout: layout,
		opts:   opts,
		runner: runner,
		logger: logger,
		now:    time.Now,
	}
}

// Plan returns the setup commands that would run after the interpreter probe,
// given the resolved interpreter path.
func (p *Provisioner) Plan(interpreter string) []Step {
	python := p.layout.Python()
	steps := []Step{{
		Name: StepCreateEnvironment,
		Path: interpreter,
		Args: []string{"-m", "venv", p.layout.EnvDir},
	}}

	if p.opts.UpgradeInstaller {
		steps = append(steps, Step{
			Name: StepUpgradeInstaller,
			Path: python,
			Args: p.pipInstall("--upgrade", "pip"),
		})
	}

	if fileExists(p.layout.Requirements) {
		steps = append(steps, Step{
			Name: StepInstallRequirements,
			Path: python,
			Args: p.pipInstall("-r", p.layout.Requirements),
		})
	}

	project := []string{p.layout.ProjectDir}
	if p.opts.Editable {
		project = []string{"-e", p.layout.ProjectDir}
	}
	steps = append(steps, Step{
		Name: StepInstallProject,
		Path: python,
		Args: p.pipInstall(project...),
	})

	return steps
}

// Provision builds the environment. The first failing step aborts the run
// and is reported as a *StepError carrying that step's exit status.
func (p *Provisioner) Provision(ctx context.Context, base []string) error {
	if err := p.checkManifests(); err != nil {
		return err
	}

	interpreter, version, err := p.probe(ctx, base)
	if err != nil {
		return err
	}

	environ := activationEnviron(p.layout, base)
	for i, step := range p.Plan(interpreter) {
		env := environ
		if i == 0 {
			// The base interpreter creates the environment from outside it.
			env = base
		}
		if err := p.run(ctx, step, env); err != nil {
			return err
		}
	}

	marker, err := newMarker(p.layout, interpreter, version, p.opts.Editable, p.now())
	if err == nil {
		err = WriteMarker(p.layout.MarkerPath(), marker)
	}
	if err != nil {
		return &StepError{Step: StepWriteMarker, ExitCode: runtime.ExitCodeFailure, Err: err}
	}

	p.logger.Info("environment ready", "path", p.layout.EnvDir)
	return nil
}

// checkManifests fails fast, before anything is created, when a file the
// install steps need is missing.
func (p *Provisioner) checkManifests() error {
	if !fileExists(p.layout.ProjectFile) {
		return &ManifestNotFoundError{Kind: "project definition", Path: p.layout.ProjectFile}
	}
	if !fileExists(p.layout.Requirements) {
		if p.opts.RequireManifest {
			return &ManifestNotFoundError{Kind: "requirements manifest", Path: p.layout.Requirements}
		}
		p.logger.Warn("requirements manifest not found, skipping", "path", p.layout.Requirements)
	}
	return nil
}

// probe resolves the base interpreter and enforces the minimum version.
func (p *Provisioner) probe(ctx context.Context, base []string) (string, PythonVersion, error) {
	interpreter, err := runtime.LookPathIn(base, p.opts.Interpreter)
	if err != nil {
		return "", PythonVersion{}, &StepError{Step: StepProbeInterpreter, ExitCode: runtime.ExitCodeNotFound, Err: err}
	}

	var out bytes.Buffer
	code, err := p.runner.Run(ctx, runtime.Invocation{
		Path:   interpreter,
		Args:   []string{"--version"},
		Env:    base,
		Dir:    p.layout.ProjectDir,
		Stdout: &out,
		Stderr: &out,
	})
	if err != nil || !code.IsSuccess() {
		return "", PythonVersion{}, &StepError{Step: StepProbeInterpreter, ExitCode: code, Err: err}
	}

	version, err := ParsePythonVersion(out.String())
	if err != nil {
		p.logger.Warn("could not determine interpreter version", "interpreter", interpreter, "output", strings.TrimSpace(out.String()))
		return interpreter, PythonVersion{}, nil
	}
	if !p.opts.MinPython.IsZero() && version.Less(p.opts.MinPython) {
		return "", PythonVersion{}, &StepError{
			Step:     StepProbeInterpreter,
			ExitCode: runtime.ExitCodeFailure,
			Err:      &InterpreterTooOldError{Interpreter: interpreter, Found: version, Required: p.opts.MinPython},
		}
	}

	p.logger.Debug("interpreter", "path", interpreter, "version", version)
	return interpreter, version, nil
}

func (p *Provisioner) run(ctx context.Context, step Step, environ []string) error {
	inv := runtime.Invocation{
		Path:   step.Path,
		Args:   step.Args,
		Env:    environ,
		Dir:    p.layout.ProjectDir,
		Stdout: p.opts.SetupOutput,
		Stderr: p.opts.SetupOutput,
	}
	p.logger.Info(string(step.Name), "cmd", inv.String())

	code, err := p.runner.Run(ctx, inv)
	if err != nil || !code.IsSuccess() {
		return &StepError{Step: step.Name, ExitCode: code, Err: err}
	}
	return nil
}

func (p *Provisioner) pipInstall(args ...string) []string {
	out := []string{"-m", "pip", "install"}
	out = append(out, p.opts.InstallerArgs...)
	return append(out, args...)
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}
