// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"cybermorph-cli/internal/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// newLogger builds the stderr logger shared by the launcher and the
// environment manager. verbose forces debug output.
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: config.AppName})

	level, err := log.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	if !cfg.UI.Color {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}

// applyColor disables styled output globally when the config asks for it.
func applyColor(cfg *config.Config) {
	if !cfg.UI.Color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
