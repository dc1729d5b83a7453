package logger

import "log"

// An Option configures a StdLogger built by NewLogger.
type Option func(*StdLogger)

// WithEnv sets the environment reported to Sentry.
func WithEnv(env string) Option {
	return func(l *StdLogger) { l.env = env }
}

// WithLevel sets the minimum level printed. LogLevelUnk is ignored.
func WithLevel(level LogLevel) Option {
	return func(l *StdLogger) {
		if level != LogLevelUnk {
			l.level = level
		}
	}
}

// WithLogger replaces the destination log.Logger.
func WithLogger(out *log.Logger) Option {
	return func(l *StdLogger) { l.out = out }
}
