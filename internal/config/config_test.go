package config_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/runkat/internal/config"
	"codeberg.org/mutker/runkat/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(nil)
	require.NoError(t, err, "Failed to load config")

	assert.False(t, cfg.Debug)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, config.DefaultSampleInterval, cfg.SampleInterval)
	assert.Empty(t, cfg.SettingsFile)
	assert.Equal(t, config.ModeRun, cfg.Mode)
	assert.Equal(t, config.LogLevelWarning, cfg.LogLevel())
	assert.Contains(t, cfg.UsageString, "--sample-interval")
}

func TestLoadFlags(t *testing.T) {
	cfg, err := config.Load([]string{
		"--debug",
		"--sample-interval", "250ms",
		"--settings-file", "/tmp/runkat.json",
		"--sprites", "/usr/share/runkat",
		"--frame-out", "/run/user/1000/runkat/frame.png",
		"--metrics-addr", "127.0.0.1:9477",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 250*time.Millisecond, cfg.SampleInterval)
	assert.Equal(t, "/tmp/runkat.json", cfg.SettingsFile)
	assert.Equal(t, "/usr/share/runkat", cfg.Sprites)
	assert.Equal(t, "/run/user/1000/runkat/frame.png", cfg.FrameOut)
	assert.Equal(t, "127.0.0.1:9477", cfg.MetricsAddr)
	assert.Equal(t, config.LogLevelDebug, cfg.LogLevel())
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("RUNKAT_VERBOSE", "true")
	t.Setenv("RUNKAT_SAMPLE_INTERVAL", "1s")
	t.Setenv("RUNKAT_METRICS_ADDR", ":9000")

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, time.Second, cfg.SampleInterval)
	assert.Equal(t, ":9000", cfg.MetricsAddr)
	assert.Equal(t, config.LogLevelInfo, cfg.LogLevel())

	// flags win
	cfg, err = config.Load([]string{"--metrics-addr", ":9100"})
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
}

func TestEnvPrefixOption(t *testing.T) {
	t.Setenv("KAT_DEBUG", "1")

	cfg, err := config.Load(nil, config.WithEnvPrefix("KAT"))
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestInvalidInterval(t *testing.T) {
	_, err := config.Load([]string{"--sample-interval", "0s"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}

func TestUnknownFlag(t *testing.T) {
	_, err := config.Load([]string{"--fanspeed", "80"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrParseFlags))
}

func TestModes(t *testing.T) {
	tests := []struct {
		args []string
		mode config.Mode
	}{
		{[]string{"--settings-describe"}, config.ModeDescribe},
		{[]string{"--settings-action", "reset"}, config.ModeAction},
		{[]string{"--status"}, config.ModeStatus},
		{[]string{"--version"}, config.ModeVersion},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			cfg, err := config.Load(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, cfg.Mode)
		})
	}
}

func TestSettingsSet(t *testing.T) {
	cfg, err := config.Load([]string{"--settings-set", `animation_source="frequency"`})
	require.NoError(t, err)
	assert.Equal(t, config.ModeSet, cfg.Mode)
	assert.Equal(t, "animation_source", cfg.SetKey)
	assert.Equal(t, `"frequency"`, cfg.SetValue)

	_, err = config.Load([]string{"--settings-set", "novalue"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}

func TestConflictingModes(t *testing.T) {
	_, err := config.Load([]string{"--status", "--version"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}
