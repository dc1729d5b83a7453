/*
Package logger provides the leveled [Logger] used across edgemux and its
[StdLogger] implementation.

A StdLogger prints messages at or above its [LogLevel], each line holding
a timestamp, the level, the call site, the message and an optional
JSON-encoded [LogContext]:

	2026/10/17 15:55:21 [WARN] edgemux/mux/dispatch.go:212 'unhandled error' log_context: {"error":"boom","request":{"method":"GET","url":"http://example.com/"}}

When SENTRY_DSN is set, [NewLogger] returns a [SentryLogger] that also
reports the errors attached to Warn, Error and Fatal messages.
*/
package logger
