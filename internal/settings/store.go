package settings

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/logger"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	appDir    = "runkat"
	legacyDir = "cosmic-runkat"
	fileName  = "config.json"
)

// DefaultPath returns $XDG_CONFIG_HOME/runkat/config.json.
func DefaultPath() string {
	return filepath.Join(configHome(), appDir, fileName)
}

// LegacyPath returns the pre-rename settings location.
func LegacyPath() string {
	return filepath.Join(configHome(), legacyDir, fileName)
}

func configHome() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}

	return filepath.Join(os.TempDir(), appDir)
}

// Store loads and persists Config. At most one goroutine per process uses a
// Store at a time.
type Store struct {
	Path       string
	LegacyPath string

	errFactory errors.Factory
	log        logger.Logger
}

// NewStore returns a Store for path. legacy may be empty to disable migration.
func NewStore(path, legacy string) *Store {
	return &Store{
		Path:       path,
		LegacyPath: legacy,
		errFactory: errors.New(),
		log:        logger.New("settings"),
	}
}

// DefaultStore returns a Store at the standard locations.
func DefaultStore() *Store {
	return NewStore(DefaultPath(), LegacyPath())
}

// Load reads the primary file. A missing primary triggers a one-time
// migration from the legacy path. Anything unreadable or invalid yields
// Default(); a partially valid file is never merged.
func (s *Store) Load() Config {
	if _, err := os.Stat(s.Path); err == nil {
		cfg, err := s.readFile(s.Path)
		if err != nil {
			s.log.Warn().Err(err).Str("path", s.Path).Msg("Invalid settings, using defaults")
			return Default()
		}
		return cfg
	}

	if cfg, ok := s.migrate(); ok {
		return cfg
	}

	return Default()
}

func (s *Store) migrate() (Config, bool) {
	if s.LegacyPath == "" {
		return Config{}, false
	}
	if _, err := os.Stat(s.LegacyPath); err != nil {
		return Config{}, false
	}

	cfg, err := s.readFile(s.LegacyPath)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.LegacyPath).Msg("Invalid legacy settings, not migrating")
		return Config{}, false
	}

	if err := s.Save(cfg); err != nil {
		s.log.ErrorWithCode(s.errFactory.Wrap(errors.ErrMigrateConfig, err)).Msg("Failed to migrate legacy settings")
		// the legacy values are still good for this run
		return cfg, true
	}

	if err := os.Remove(s.LegacyPath); err != nil {
		s.log.Warn().Err(err).Str("path", s.LegacyPath).Msg("Failed to remove legacy settings")
	}
	s.log.Info().Str("from", s.LegacyPath).Str("to", s.Path).Msg("Migrated settings")

	return cfg, true
}

func (s *Store) readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, s.errFactory.Wrap(errors.ErrReadConfig, err)
	}

	return Decode(data)
}

// Decode parses settings JSON. Missing keys take their default, values of the
// wrong JSON type are rejected, and the result is validated as a whole.
func Decode(data []byte) (Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	def := Default()
	v.SetDefault("sleep_threshold_cpu", def.SleepThresholdCPU)
	v.SetDefault("sleep_threshold_freq", def.SleepThresholdFreq)
	v.SetDefault("sleep_threshold_temp", def.SleepThresholdTemp)
	v.SetDefault("min_fps", def.MinFPS)
	v.SetDefault("max_fps", def.MaxFPS)
	v.SetDefault("show_percentage", def.ShowPercentage)
	v.SetDefault("animation_source", string(def.AnimationSource))

	factory := errors.New()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return Config{}, factory.Wrap(errors.ErrReadConfig, err)
	}

	// "3" is not a number and 1 is not a bool
	strict := func(dc *mapstructure.DecoderConfig) { dc.WeaklyTypedInput = false }

	var cfg Config
	if err := v.Unmarshal(&cfg, strict); err != nil {
		return Config{}, factory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, factory.Wrap(errors.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Save validates cfg and writes it atomically. Invalid settings never reach
// disk.
func (s *Store) Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return s.errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return s.errFactory.Wrap(errors.ErrWriteConfig, err)
	}

	if err := writeAtomic(s.Path, append(data, '\n')); err != nil {
		return s.errFactory.Wrap(errors.ErrWriteConfig, err)
	}

	return nil
}

// ModTime returns the primary file's modification time, or zero if absent.
func (s *Store) ModTime() time.Time {
	info, err := os.Stat(s.Path)
	if err != nil {
		return time.Time{}
	}

	return info.ModTime()
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
