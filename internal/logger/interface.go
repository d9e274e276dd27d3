package logger

import "codeberg.org/mutker/runkat/internal/errors"

// Logger defines the interface for component-scoped logging operations.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
}
