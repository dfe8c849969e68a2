// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// FormatCommandLine renders path and args as a single line a POSIX shell
// would parse back into the same argument vector. It is for display only;
// invocations never go through a shell.
func FormatCommandLine(path string, args []string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, quoteWord(path))
	for _, arg := range args {
		words = append(words, quoteWord(arg))
	}
	return strings.Join(words, " ")
}

// String renders the invocation's command line.
func (inv Invocation) String() string {
	return FormatCommandLine(inv.Path, inv.Args)
}

func quoteWord(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Quote rejects strings bash cannot represent (e.g. NUL bytes).
		return strconv.Quote(s)
	}
	return quoted
}
