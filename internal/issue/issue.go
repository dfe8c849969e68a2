// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	InterpreterNotFoundId Id = iota + 1
	InterpreterTooOldId
	SetupStepFailedId
	ManifestNotFoundId
	TargetNotFoundId
	EnvironmentLockedId
	ConfigLoadFailedId
	PermissionDeniedId
	ProjectDirUnresolvedId
	UnsafeEnvDirId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown using the glamour style at
// stylePath ("dark", "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# Python interpreter not found!

The launcher needs a Python 3 interpreter to create its environment, but none
was found on your PATH.

## Things you can try:
- Install Python 3.8 or newer from your package manager:
~~~
$ sudo apt install python3 python3-venv
~~~

- Point the launcher at a specific interpreter:
~~~
$ CYBERMORPH_INTERPRETER=/opt/python3.12/bin/python3 cybermorph --help
~~~

- Or set it permanently in your config file:
~~~cue
interpreter: "python3.12"
~~~`,
		extLinks: []HttpLink{"https://docs.python.org/3/library/venv.html"},
	}

	interpreterTooOldIssue = &Issue{
		id: InterpreterTooOldId,
		mdMsg: `
# Python interpreter too old!

The project requires a newer Python than the one that was found.

## Things you can try:
- Install a newer interpreter and select it:
~~~cue
interpreter: "python3.12"
~~~

- Check which interpreter is used:
~~~
$ python3 --version
~~~`,
	}

	setupStepFailedIssue = &Issue{
		id: SetupStepFailedId,
		mdMsg: `
# Environment setup failed!

One of the setup steps (creating the environment, upgrading pip or installing
dependencies) exited with an error. The launcher stopped before running the
tool and exited with that step's status.

## Things you can try:
- Read the installer output above for the failing package
- Check your network connection or package index settings:
~~~cue
installer_args: ["--index-url", "https://pypi.example.com/simple"]
~~~

- Start over from a clean environment:
~~~
$ cybermorph-env provision --force
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# Project files not found!

The launcher resolves its project from the directory holding its executable.
The requirements manifest or the project definition is missing there.

## Things you can try:
- Make sure the launcher sits next to ` + "`requirements.txt`" + ` and ` + "`setup.py`" + `
- Point the launcher at the project explicitly:
~~~
$ CYBERMORPH_PROJECT_DIR=/path/to/cybermorph cybermorph
~~~

- Allow running without a requirements manifest:
~~~cue
require_manifest: false
~~~`,
	}

	targetNotFoundIssue = &Issue{
		id: TargetNotFoundId,
		mdMsg: `
# Tool not found in the environment!

The environment was activated but the tool's executable is not installed in it.
This usually means the project definition does not declare the entry point.

## Things you can try:
- Inspect the environment:
~~~
$ cybermorph-env status
$ ls "$(cybermorph-env path)/bin"
~~~

- Reinstall the project:
~~~
$ cybermorph-env provision --force
~~~`,
	}

	environmentLockedIssue = &Issue{
		id: EnvironmentLockedId,
		mdMsg: `
# Environment is in use!

Another launcher is provisioning or using the environment and the wait was
interrupted.

## Things you can try:
- Wait for the other process to finish and retry
- Find the process holding the lock:
~~~
$ fuser -v "$(cybermorph-env path).lock"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or did not match the schema.

## Things you can try:
- Show where the configuration is read from:
~~~
$ cybermorph-env config path
~~~

- Recreate a default configuration:
~~~
$ cybermorph-env config init
~~~

- Example configuration:
~~~cue
env_dir:     ".venv"
interpreter: "python3"
log_level:   "info"
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

The launcher could not write to its project directory or execute a file in the
environment.

## Things you can try:
- Check the permissions of the project directory
- Put the environment somewhere writable:
~~~
$ CYBERMORPH_ENV_DIR=$HOME/.cache/cybermorph/venv cybermorph
~~~`,
	}

	projectDirUnresolvedIssue = &Issue{
		id: ProjectDirUnresolvedId,
		mdMsg: `
# Project directory could not be determined!

The launcher locates its project from the path of its own executable, and
that path could not be resolved (for example a dangling symlink).

## Things you can try:
- Check where the launcher points:
~~~
$ ls -l "$(command -v cybermorph)"
~~~

- Point the launcher at the project explicitly:
~~~
$ CYBERMORPH_PROJECT_DIR=/path/to/cybermorph cybermorph
~~~`,
	}

	unsafeEnvDirIssue = &Issue{
		id: UnsafeEnvDirId,
		mdMsg: `
# Environment directory is not safe to use!

The environment is deleted and recreated whenever setup has to start over.
The configured directory is the project itself, one of its parents, or an
existing directory that does not look like a virtual environment, so the
launcher refused to touch it.

## Things you can try:
- Use a dedicated directory for the environment:
~~~cue
env_dir: ".venv"
~~~

- Check what the launcher resolved:
~~~
$ cybermorph-env path
~~~`,
	}

	issues = map[Id]*Issue{
		interpreterNotFoundIssue.Id(): interpreterNotFoundIssue,
		interpreterTooOldIssue.Id():   interpreterTooOldIssue,
		setupStepFailedIssue.Id():     setupStepFailedIssue,
		manifestNotFoundIssue.Id():    manifestNotFoundIssue,
		targetNotFoundIssue.Id():      targetNotFoundIssue,
		environmentLockedIssue.Id():   environmentLockedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
		projectDirUnresolvedIssue.Id(): projectDirUnresolvedIssue,
		unsafeEnvDirIssue.Id():         unsafeEnvDirIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
