package logger

import (
	"io"
	"os"
	"syscall"
	"time"

	"codeberg.org/mutker/runkat/internal/errors"
	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// ParseLevel maps the names used by --debug/--verbose onto a LogLevel.
// Unknown names fall back to WarnLevel.
func ParseLevel(name string) LogLevel {
	switch name {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "error":
		return ErrorLevel
	default:
		return WarnLevel
	}
}

type LogEvent struct {
	*zerolog.Event
}

// Options controls where and how events are written.
type Options struct {
	Out   io.Writer // os.Stdout when nil
	Level LogLevel
	// Service drops timestamps, journald adds its own.
	Service bool
	NoColor bool
}

// Init replaces the process-wide logger.
func Init(opts Options) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: opts.NoColor || opts.Service}
	if opts.Service {
		log = zerolog.New(cw)
	} else {
		log = zerolog.New(cw).With().Timestamp().Logger()
	}
	SetLogLevel(opts.Level)
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// IsService checks if the application is running under a service manager
func IsService() bool {
	if os.Getenv("INVOCATION_ID") != "" || os.Getenv("JOURNAL_STREAM") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid() && os.Getenv("TERM") == ""
}

func Debug() *LogEvent { return &LogEvent{log.Debug()} }
func Info() *LogEvent  { return &LogEvent{log.Info()} }
func Warn() *LogEvent  { return &LogEvent{log.Warn()} }
func Error() *LogEvent { return &LogEvent{log.Error()} }

// Fatal logs and exits the program once the event is sent.
func Fatal() *LogEvent { return &LogEvent{log.Fatal()} }

// ErrorWithCode attaches err's code and cause to an error-level event.
func ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{withCode(log.Error(), err)}
}

// FatalWithCode is ErrorWithCode at fatal level.
func FatalWithCode(err errors.Error) *LogEvent {
	return &LogEvent{withCode(log.Fatal(), err)}
}

func withCode(ev *zerolog.Event, err errors.Error) *zerolog.Event {
	ev = ev.Str("error_code", string(err.Code())).Str("error_message", err.Error())
	if cause := err.Unwrap(); cause != nil {
		ev = ev.AnErr("error", cause)
	}
	return ev
}

// component is a child of the global logger. It resolves the parent at call
// time so loggers created before Init still pick up the configured output.
type component string

// New returns a Logger that tags every event with name.
func New(name string) Logger {
	return component(name)
}

func (c component) sub() *zerolog.Logger {
	l := log.With().Str("component", string(c)).Logger()
	return &l
}

func (c component) Debug() *LogEvent { return &LogEvent{c.sub().Debug()} }
func (c component) Info() *LogEvent  { return &LogEvent{c.sub().Info()} }
func (c component) Warn() *LogEvent  { return &LogEvent{c.sub().Warn()} }
func (c component) Error() *LogEvent { return &LogEvent{c.sub().Error()} }

func (c component) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{withCode(c.sub().Error(), err)}
}
