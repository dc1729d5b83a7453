package logger

import (
	"strings"

	"github.com/fatih/color"
)

// LogLevel orders log messages by importance.
type LogLevel int

const (
	LogLevelUnk LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal

	// logLevelOff is above every level a message can carry.
	logLevelOff
)

type levelStyle struct {
	name  string
	paint func(format string, a ...any) string
}

var levelStyles = [...]levelStyle{
	LogLevelUnk:   {"UNK", color.WhiteString},
	LogLevelDebug: {"DEBUG", color.WhiteString},
	LogLevelInfo:  {"INFO", color.BlueString},
	LogLevelWarn:  {"WARN", color.YellowString},
	LogLevelError: {"ERROR", color.RedString},
	LogLevelFatal: {"FATAL", color.MagentaString},
}

// NewLogLevel parses a level name such as "debug" or "WARN". Unknown names
// yield LogLevelUnk.
func NewLogLevel(val string) LogLevel {
	val = strings.ToUpper(strings.TrimSpace(val))
	for ll := LogLevelDebug; ll <= LogLevelFatal; ll++ {
		if levelStyles[ll].name == val {
			return ll
		}
	}

	return LogLevelUnk
}

func (ll LogLevel) style() levelStyle {
	if ll < LogLevelUnk || ll > LogLevelFatal {
		return levelStyles[LogLevelUnk]
	}

	return levelStyles[ll]
}

func (ll LogLevel) String() string { return "[" + ll.style().name + "]" }
