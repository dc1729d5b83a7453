package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Logger writes leveled messages with an optional LogContext.
type Logger interface {
	Debug(msg string, ctx *LogContext)
	Error(msg string, ctx *LogContext)
	Fatal(msg string, ctx *LogContext)
	Info(msg string, ctx *LogContext)
	Warn(msg string, ctx *LogContext)

	LogLevel() LogLevel
}

// modulePrefix anchors call sites inside this module.
const modulePrefix = "edgemux" + string(filepath.Separator)

// StdLogger writes colorized lines through a log.Logger.
type StdLogger struct {
	env   string
	out   *log.Logger
	level LogLevel
}

// NewLogger returns a Logger printing to os.Stdout at LogLevelInfo in the
// DEVELOPMENT environment unless options say otherwise.
//
// When SENTRY_DSN is set, the returned Logger also ships the errors of
// Warn, Error and Fatal messages to Sentry. If Sentry cannot be
// configured, the failure is logged and the StdLogger is returned.
func NewLogger(opts ...Option) Logger {
	l := &StdLogger{
		env:   "DEVELOPMENT",
		out:   log.New(os.Stdout, "", log.LstdFlags),
		level: LogLevelInfo,
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		l.env = env
	}

	for _, opt := range opts {
		opt(l)
	}

	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return l
	}

	sl, err := NewSentryLogger(l, dsn)
	if err != nil {
		l.Error("sentry disabled", &LogContext{Error: err})
		return l
	}

	return sl
}

// Discard returns a Logger that drops every message.
func Discard() Logger {
	return &StdLogger{out: log.New(io.Discard, "", 0), level: logLevelOff}
}

func (l *StdLogger) Debug(msg string, ctx *LogContext) { l.emit(0, LogLevelDebug, msg, ctx) }
func (l *StdLogger) Info(msg string, ctx *LogContext)  { l.emit(0, LogLevelInfo, msg, ctx) }
func (l *StdLogger) Warn(msg string, ctx *LogContext)  { l.emit(0, LogLevelWarn, msg, ctx) }
func (l *StdLogger) Error(msg string, ctx *LogContext) { l.emit(0, LogLevelError, msg, ctx) }

// Fatal logs at LogLevelFatal. It does not exit.
func (l *StdLogger) Fatal(msg string, ctx *LogContext) { l.emit(0, LogLevelFatal, msg, ctx) }

func (l *StdLogger) LogLevel() LogLevel { return l.level }

func (l *StdLogger) enabled(level LogLevel) bool { return level >= l.level }

// emit prints msg when level is enabled. extra counts the frames between
// the exported level method and emit.
func (l *StdLogger) emit(extra int, level LogLevel, msg string, ctx *LogContext) {
	if !l.enabled(level) {
		return
	}

	_, file, line, _ := runtime.Caller(2 + extra)

	out := level.style().paint("%s %s:%d '%s'", level, callSite(file), line, msg)
	if ctx != nil {
		out += " log_context: " + ctx.String()
	}

	l.out.Println(out)
}

// callSite shortens file to its path inside the module, or to its parent
// directory and name outside it.
func callSite(file string) string {
	if i := strings.LastIndex(file, modulePrefix); i >= 0 {
		return file[i:]
	}

	return filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
}
