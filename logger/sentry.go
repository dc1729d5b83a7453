package logger

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

var sentryLevels = map[LogLevel]sentry.Level{
	LogLevelWarn:  sentry.LevelWarning,
	LogLevelError: sentry.LevelError,
	LogLevelFatal: sentry.LevelFatal,
}

// SentryLogger prints through a StdLogger and reports the Error of every
// Warn, Error and Fatal LogContext to Sentry.
type SentryLogger struct {
	std *StdLogger
	hub *sentry.Hub
}

// NewSentryLogger returns a SentryLogger sending to dsn.
func NewSentryLogger(std *StdLogger, dsn string) (*SentryLogger, error) {
	return newSentryLogger(std, sentry.ClientOptions{Dsn: dsn})
}

func newSentryLogger(std *StdLogger, opts sentry.ClientOptions) (*SentryLogger, error) {
	opts.Environment = std.env
	opts.IgnoreErrors = append(opts.IgnoreErrors, "write: broken pipe")

	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("logger: init sentry: %w", err)
	}

	return &SentryLogger{std: std, hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *SentryLogger) Debug(msg string, ctx *LogContext) { s.emit(LogLevelDebug, msg, ctx) }
func (s *SentryLogger) Info(msg string, ctx *LogContext)  { s.emit(LogLevelInfo, msg, ctx) }
func (s *SentryLogger) Warn(msg string, ctx *LogContext)  { s.emit(LogLevelWarn, msg, ctx) }
func (s *SentryLogger) Error(msg string, ctx *LogContext) { s.emit(LogLevelError, msg, ctx) }
func (s *SentryLogger) Fatal(msg string, ctx *LogContext) { s.emit(LogLevelFatal, msg, ctx) }

func (s *SentryLogger) LogLevel() LogLevel { return s.std.level }

// Flush waits up to timeout for queued events to be sent.
func (s *SentryLogger) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

func (s *SentryLogger) emit(level LogLevel, msg string, ctx *LogContext) {
	if !s.std.enabled(level) {
		return
	}

	s.std.emit(1, level, msg, ctx)

	sl, ok := sentryLevels[level]
	if !ok || ctx == nil || ctx.Error == nil {
		return
	}

	s.hub.WithScope(func(scope *sentry.Scope) {
		if ctx.Request != nil {
			scope.SetRequest(ctx.Request)
		}
		if ctx.Data != nil {
			scope.SetExtra("data", ctx.Data)
		}
		scope.SetExtra("message", msg)
		scope.SetLevel(sl)

		s.hub.CaptureException(ctx.Error)
	})
}
