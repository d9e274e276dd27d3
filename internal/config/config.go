package config

import (
	"fmt"
	"strings"
	"time"

	"codeberg.org/mutker/runkat/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix      = "RUNKAT"
	DefaultSampleInterval = 500 * time.Millisecond
)

// Config holds process options from flags and RUNKAT_* environment
// variables. Flags win over the environment.
type Config struct {
	Debug          bool
	Verbose        bool
	SampleInterval time.Duration
	SettingsFile   string
	Sprites        string
	FrameOut       string
	MetricsAddr    string

	Mode        Mode
	SetKey      string
	SetValue    string
	Action      string
	ShowHelp    bool
	UsageString string
}

// LogLevel derives the level from --debug and --verbose.
func (c *Config) LogLevel() LogLevel {
	switch {
	case c.Debug:
		return LogLevelDebug
	case c.Verbose:
		return LogLevelInfo
	default:
		return LogLevelWarning
	}
}

// Load parses args (without the program name).
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix, name: "runkat"}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
	}

	fs := pflag.NewFlagSet(o.name, pflag.ContinueOnError)
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.Duration("sample-interval", DefaultSampleInterval, "CPU usage measurement window")
	fs.String("settings-file", "", "Settings file (default $XDG_CONFIG_HOME/runkat/config.json)")
	fs.String("sprites", "", "Directory with run-0.png..run-9.png and sleep.png")
	fs.String("frame-out", "", "Write the current frame to this PNG file")
	fs.String("metrics-addr", "", "Serve Prometheus metrics on this address")

	fs.Bool("settings-describe", false, "Print the settings schema as JSON")
	fs.String("settings-set", "", "Set a setting: key=<json value>")
	fs.String("settings-action", "", "Run a settings action (reset)")
	fs.Bool("status", false, "Report whether the driver is running")
	fs.Bool("version", false, "Print version and exit")
	help := fs.BoolP("help", "h", false, "Show this help")

	fs.SortFlags = false
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrParseFlags, err)
	}

	v := viper.New()
	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	cfg := &Config{
		Debug:          v.GetBool("debug"),
		Verbose:        v.GetBool("verbose"),
		SampleInterval: v.GetDuration("sample-interval"),
		SettingsFile:   v.GetString("settings-file"),
		Sprites:        v.GetString("sprites"),
		FrameOut:       v.GetString("frame-out"),
		MetricsAddr:    v.GetString("metrics-addr"),
		ShowHelp:       *help,
		UsageString:    fs.FlagUsages(),
	}

	if cfg.SampleInterval <= 0 {
		return nil, errFactory.WithData(errors.ErrInvalidInterval, cfg.SampleInterval.String())
	}

	// modes come from flags only
	modes := 0
	if describe, _ := fs.GetBool("settings-describe"); describe {
		cfg.Mode = ModeDescribe
		modes++
	}
	if set, _ := fs.GetString("settings-set"); set != "" {
		key, value, ok := strings.Cut(set, "=")
		if !ok || key == "" {
			return nil, errFactory.WithMessage(errors.ErrInvalidArgument,
				fmt.Sprintf("--settings-set expects key=value, got %q", set))
		}
		cfg.Mode, cfg.SetKey, cfg.SetValue = ModeSet, key, value
		modes++
	}
	if action, _ := fs.GetString("settings-action"); action != "" {
		cfg.Mode, cfg.Action = ModeAction, action
		modes++
	}
	if status, _ := fs.GetBool("status"); status {
		cfg.Mode = ModeStatus
		modes++
	}
	if version, _ := fs.GetBool("version"); version {
		cfg.Mode = ModeVersion
		modes++
	}
	if modes > 1 {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "only one of --settings-describe, --settings-set, --settings-action, --status, --version may be given")
	}

	return cfg, nil
}
