// Package vmlog wraps logrus with the five-level filter named in the
// core spec's environment variable (error, warn, info, debug, trace).
// Grounded in shape on rcornwell-S370/util/logger's small wrapper-struct
// idea, but built on sirupsen/logrus rather than log/slog because
// logrus is the only logger in the retrieved pack whose level set lines
// up with the spec's five names one-for-one.
package vmlog

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// EnvVar is the environment variable consulted by New when no level is
// given explicitly.
const EnvVar = "UXNVM_LOG"

// New builds a logger that writes to stderr at the given level. An
// empty level falls back to EnvVar, and an unrecognised value falls
// back to info.
func New(level string) *logrus.Logger {
	if level == "" {
		level = os.Getenv(EnvVar)
	}
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Discard is a logger with all output suppressed, used as the default
// for core packages embedded without an explicit logger.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
