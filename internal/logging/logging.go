// Package logging constructs the diagnostic logger shared by the CLI.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing human-readable diagnostics to w at the given
// level. Level strings that do not parse fall back to info rather than
// failing: a bad log_level must never keep the safety gate from running.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: false,
		Prefix:          "lossguard",
	})
}
