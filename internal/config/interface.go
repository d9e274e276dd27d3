package config

// Option adjusts how Load reads configuration.
type Option func(*options) error

type options struct {
	envPrefix string
	name      string
}

// WithEnvPrefix sets the environment variable prefix. Default is "RUNKAT".
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// WithName sets the program name used in usage output.
func WithName(name string) Option {
	return func(o *options) error {
		o.name = name
		return nil
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
)

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// Mode is what the process was asked to do.
type Mode int

const (
	ModeRun Mode = iota
	ModeDescribe
	ModeSet
	ModeAction
	ModeStatus
	ModeVersion
)

func (m Mode) String() string {
	switch m {
	case ModeDescribe:
		return "settings-describe"
	case ModeSet:
		return "settings-set"
	case ModeAction:
		return "settings-action"
	case ModeStatus:
		return "status"
	case ModeVersion:
		return "version"
	default:
		return "run"
	}
}
