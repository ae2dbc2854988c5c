// Package logging constructs the process-wide structured logger. The
// *logrus.Logger is built once in cmd/baseindexer and threaded through
// every constructor, never reached via a package-level global (see
// SPEC_FULL.md §9, "shared global state").
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger writing JSON-formatted entries to stderr.
// level is one of logrus's parseable level strings ("debug", "info",
// "warn", "error"); an unparseable level falls back to info.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Component returns a child entry tagged with the emitting component's
// name, so every log line can be filtered by pipeline stage.
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}
