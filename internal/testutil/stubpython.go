// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"cybermorph-cli/internal/runtime"
)

// StubPython is a POSIX shell stand-in for a base interpreter. It answers
// --version, "-m venv DIR" creates DIR/pyvenv.cfg, DIR/bin/python (a copy of
// itself) and a cybermorph-auto target, and "-m pip" succeeds after logging to stderr.
//
// The generated target prints each argument as "[arg]" on its own line and
// exits with $CYBERMORPH_TEST_EXIT (default 0). A pip call whose arguments
// contain $CYBERMORPH_TEST_PIP_FAIL exits with $CYBERMORPH_TEST_PIP_STATUS.
const StubPython = `#!/bin/sh
case "$1" in
--version)
	echo "Python 3.11.4"
	exit 0
	;;
-m)
	case "$2" in
	venv)
		mkdir -p "$3/bin" || exit 1
		echo "home = $(dirname "$0")" > "$3/pyvenv.cfg" || exit 1
		cp "$0" "$3/bin/python" || exit 1
		cat > "$3/bin/cybermorph-auto" <<'TARGET'
#!/bin/sh
for a in "$@"; do printf '%s\n' "[$a]"; done
exit "${CYBERMORPH_TEST_EXIT:-0}"
TARGET
		chmod +x "$3/bin/cybermorph-auto"
		exit 0
		;;
	pip)
		shift 2
		echo "pip $*" >&2
		if [ -n "$CYBERMORPH_TEST_PIP_FAIL" ]; then
			case "$*" in
			*"$CYBERMORPH_TEST_PIP_FAIL"*) exit "${CYBERMORPH_TEST_PIP_STATUS:-1}" ;;
			esac
		fi
		exit 0
		;;
	esac
	;;
esac
echo "stub python: unexpected arguments: $*" >&2
exit 2
`

// InstallStubPython replaces the project's base interpreter with StubPython
// and adds the system directories the script's utilities live in to
// BaseEnv's PATH, after SystemBin.
func (p *Project) InstallStubPython(t testing.TB) {
	t.Helper()
	MustWriteExecutable(t, filepath.Join(p.SystemBin, "python3"), StubPython)
	p.BaseEnv = runtime.SetEnv(p.BaseEnv, runtime.PathEnvVar, strings.Join([]string{p.SystemBin, "/usr/bin", "/bin"}, string(filepath.ListSeparator)))
}
