// Package log is the process-wide logger for warden. Library code logs
// through the package-level helpers; nothing here ever terminates the
// process.
package log

import (
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

var debugEnabled = os.Getenv("DEBUG") == "true" || os.Getenv("DEBUG") == "1"

var logger = newLogger()

func newLogger() *charmlog.Logger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "warden",
	})

	if debugEnabled {
		l.SetLevel(charmlog.DebugLevel)
	} else {
		l.SetLevel(charmlog.WarnLevel)
	}

	// Plain logfmt when stderr is piped somewhere.
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		l.SetFormatter(charmlog.LogfmtFormatter)
	}

	return l
}

// Initialize sets the level explicitly, overriding the DEBUG environment
// variable. Applications call this once at startup; library code works
// without it.
func Initialize(level string) {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		logger.Warnf("unknown log level %q, keeping %v", level, logger.GetLevel())
		return
	}
	logger.SetLevel(lvl)
}

// Default returns the underlying logger, for callers that want structured
// key-value logging.
func Default() *charmlog.Logger { return logger }

// With returns a sub-logger carrying the given key-value pairs.
func With(keyvals ...interface{}) *charmlog.Logger { return logger.With(keyvals...) }

func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }

func Infof(format string, args ...interface{}) { logger.Infof(format, args...) }

func Warnf(format string, args ...interface{}) { logger.Warnf(format, args...) }

func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
