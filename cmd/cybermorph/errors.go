// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"cybermorph-cli/internal/issue"

	"github.com/charmbracelet/fang"
)

// handleError is the fang error handler for both binaries. Launcher-side
// failures are printed with their suggestions and catalog entry; an
// ExitError without a cause stays silent so the child's own output is the
// last thing the user sees.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))
	renderIssue(w, issue.IssueOf(err), a.issueStyle())
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue prints a catalog entry as markdown. Rendering failures are
// dropped; the error line above already carries the essentials.
func renderIssue(w io.Writer, entry *issue.Issue, style string) {
	if entry == nil {
		return
	}
	rendered, err := entry.Render(style)
	if err != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

func (a *App) issueStyle() string {
	if a.colorless {
		return "notty"
	}
	return "dark"
}
