package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"codeberg.org/mutker/runkat/internal/animation"
	"codeberg.org/mutker/runkat/internal/config"
	"codeberg.org/mutker/runkat/internal/driver"
	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/logger"
	"codeberg.org/mutker/runkat/internal/metrics"
	"codeberg.org/mutker/runkat/internal/pid"
	"codeberg.org/mutker/runkat/internal/sampler"
	"codeberg.org/mutker/runkat/internal/settings"
	"codeberg.org/mutker/runkat/internal/telemetry"
	"codeberg.org/mutker/runkat/internal/theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// set by -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowHelp {
		fmt.Printf("Usage: runkat [options]\n\n%s", cfg.UsageString)
		return
	}

	// settings modes answer on stdout in JSON, so logs go to stderr
	logOpts := logger.Options{Level: logger.ParseLevel(cfg.LogLevel().String())}
	if cfg.Mode == config.ModeRun {
		logOpts.Service = logger.IsService()
	} else {
		logOpts.Out = os.Stderr
		logOpts.NoColor = true
	}
	logger.Init(logOpts)
	logger.Debug().Str("mode", cfg.Mode.String()).Str("log_level", cfg.LogLevel().String()).Msg("Config loaded")

	store := settingsStore(cfg)

	switch cfg.Mode {
	case config.ModeVersion:
		fmt.Println("runkat", version)
	case config.ModeDescribe:
		printJSON(settings.Describe(store.Load()))
	case config.ModeSet:
		printJSON(withSettingsLock(func() settings.Response {
			return settings.Apply(store, cfg.SetKey, cfg.SetValue)
		}))
	case config.ModeAction:
		printJSON(withSettingsLock(func() settings.Response {
			return settings.RunAction(store, cfg.Action)
		}))
	case config.ModeStatus:
		printJSON(status())
	default:
		if err := run(cfg, store); err != nil {
			var appErr errors.Error
			if errors.As(err, &appErr) {
				logger.ErrorWithCode(appErr).Msg("Exiting")
			} else {
				logger.Error().Err(err).Msg("Exiting")
			}
			if code, _ := errors.CodeOf(err); code == errors.ErrAlreadyRunning {
				os.Exit(3)
			}
			os.Exit(1)
		}
	}
}

func settingsStore(cfg *config.Config) *settings.Store {
	if cfg.SettingsFile != "" {
		// an explicit file has no legacy location
		return settings.NewStore(cfg.SettingsFile, "")
	}

	return settings.DefaultStore()
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// withSettingsLock serializes settings writers across processes.
func withSettingsLock(fn func() settings.Response) settings.Response {
	lock := pid.New(pid.RoleSettings)
	if err := lock.Acquire(); err != nil {
		return settings.Response{OK: false, Message: err.Error()}
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release settings lock")
		}
	}()

	return fn()
}

type roleStatus struct {
	Running bool `json:"running"`
	PID     int  `json:"pid,omitempty"`
}

func status() map[pid.Role]roleStatus {
	out := make(map[pid.Role]roleStatus)
	for _, role := range []pid.Role{pid.RoleDriver, pid.RoleSettings} {
		owner, ok := pid.Owner(pid.PathFor(role), pid.DefaultStaleness)
		out[role] = roleStatus{Running: ok, PID: owner}
	}

	return out
}

func run(cfg *config.Config, store *settings.Store) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := telemetry.New(reg)

	frames, sleep, err := theme.LoadSprites(cfg.Sprites, animation.FrameCount)
	if err != nil {
		return err
	}
	sprites := theme.NewCache(frames, sleep)
	themeSrc := theme.DefaultFileSource()

	logger.Info().
		Str("settings", store.Path).
		Dur("sample_interval", cfg.SampleInterval).
		Msg("Starting runkat")

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
			return telemetry.Serve(gCtx, cfg.MetricsAddr, reg)
		})
	}

	g.Go(func() error {
		err := driver.Supervise(gCtx, driver.DefaultRestartDelay, func(ctx context.Context) error {
			return session(ctx, cfg, store, sprites, themeSrc, rec)
		})
		// the driver is the reason to run; take the metrics endpoint down with it
		stop()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info().Msg("Exiting...")
	return nil
}

// session owns every OS-facing resource for one run of the driver. All of
// them are torn down before it returns, so a restart starts clean.
func session(
	ctx context.Context,
	cfg *config.Config,
	store *settings.Store,
	sprites *theme.Cache,
	themeSrc *theme.FileSource,
	rec *telemetry.Metrics,
) error {
	lock := pid.New(pid.RoleDriver)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release driver lock")
		}
	}()

	reader := metrics.NewReader()
	reader.OnFailure = func(source metrics.Source, _ error) {
		rec.ReadFailed(source)
	}

	smp := sampler.New(reader, cfg.SampleInterval, rec)
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := smp.Start(sctx); err != nil {
		return err
	}
	defer smp.Wait()
	defer smp.Stop()

	dirs := append([]string{filepath.Dir(store.Path)}, themeSrc.WatchDirs()...)
	watcher, err := driver.Watch(dirs...)
	if err != nil {
		logger.Warn().Err(err).Msg("File watching unavailable, polling only")
		watcher = nil
	}
	defer watcher.Close()

	var presenter driver.Presenter = driver.NewLogPresenter()
	if cfg.FrameOut != "" {
		presenter = driver.NewPNGPresenter(cfg.FrameOut)
	}
	defer presenter.Close()

	d := driver.New(driver.Options{
		Store:     store,
		Sampler:   smp,
		Theme:     themeSrc,
		Sprites:   sprites,
		Presenter: presenter,
		Watcher:   watcher,
		Lock:      lock,
		Recorder:  rec,
	})

	return d.Run(ctx)
}
