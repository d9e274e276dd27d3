// Package driver runs the scheduling loop: it combines the latest metric
// snapshot, the settings and the theme into animation frames.
package driver

import (
	"context"
	"math"
	"path/filepath"
	"time"

	"codeberg.org/mutker/runkat/internal/animation"
	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/logger"
	"codeberg.org/mutker/runkat/internal/metrics"
	"codeberg.org/mutker/runkat/internal/pid"
	"codeberg.org/mutker/runkat/internal/settings"
	"codeberg.org/mutker/runkat/internal/smooth"
	"codeberg.org/mutker/runkat/internal/suspend"
	"codeberg.org/mutker/runkat/internal/telemetry"
	"codeberg.org/mutker/runkat/internal/theme"
	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultTick is the animation loop cadence.
	DefaultTick = 33 * time.Millisecond
	// DefaultPoll is how often settings and theme are checked for changes.
	DefaultPoll = 500 * time.Millisecond
)

// ErrSuspendResume is returned by Run when a suspend/resume was detected.
// Match it with errors.Is.
var ErrSuspendResume = errors.New().New(errors.ErrSuspendResume)

// MetricSource is the read side of the sampler.
type MetricSource interface {
	Latest() *metrics.Snapshot
	Updates() <-chan struct{}
}

// Options wires a Driver. Store, Sampler, Sprites and Presenter are
// required.
type Options struct {
	Store     *settings.Store
	Sampler   MetricSource
	Theme     theme.Source
	Sprites   *theme.Cache
	Presenter Presenter
	Watcher   *Watcher
	Lock      *pid.Lock
	Recorder  telemetry.Recorder

	Tick             time.Duration
	Poll             time.Duration
	SuspendThreshold time.Duration
	SmoothingWindow  int

	// Now defaults to time.Now.
	Now func() time.Time
}

// Driver is one session of the scheduling loop. It is not reusable after
// Run returns.
type Driver struct {
	opts Options
	log  logger.Logger

	cfg          settings.Config
	cfgModTime   time.Time
	themeModTime time.Time
	themeLoaded  bool

	window   *smooth.Window
	state    animation.State
	detector *suspend.Detector
	lastSeq  uint64
	snapshot metrics.Snapshot
	smoothed float64
	lastRaw  float64

	lastPoll    time.Time
	lastRefresh time.Time
	last        *Frame
	dirty       bool
}

// New returns a Driver with defaults filled in.
func New(opts Options) *Driver {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Poll <= 0 {
		opts.Poll = DefaultPoll
	}
	if opts.SmoothingWindow <= 0 {
		opts.SmoothingWindow = smooth.DefaultSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Recorder == nil {
		opts.Recorder = (*telemetry.Metrics)(nil)
	}

	return &Driver{
		opts:     opts,
		log:      logger.New("driver"),
		window:   smooth.New(opts.SmoothingWindow),
		detector: suspend.New(opts.SuspendThreshold),
	}
}

// Run drives frames until ctx is cancelled (returning nil) or a suspend is
// detected (returning ErrSuspendResume).
func (d *Driver) Run(ctx context.Context) error {
	now := d.opts.Now()
	d.reloadSettings(true)
	d.checkTheme()
	d.lastPoll = now
	d.lastRefresh = now
	d.dirty = true

	ticker := time.NewTicker(d.opts.Tick)
	defer ticker.Stop()

	d.log.Info().
		Str("source", d.cfg.AnimationSource.String()).
		Dur("tick", d.opts.Tick).
		Msg("Driver started")

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("Driver stopping")
			return nil
		case <-d.opts.Sampler.Updates():
			// picked up on the next tick
		case ev := <-d.opts.Watcher.Events():
			d.handleEvent(ev)
		case err := <-d.opts.Watcher.Errors():
			d.log.Debug().Err(err).Msg("Watcher error")
		case <-ticker.C:
			if err := d.iterate(d.opts.Now()); err != nil {
				return err
			}
		}
	}
}

func (d *Driver) handleEvent(ev fsnotify.Event) {
	if filepath.Dir(ev.Name) == filepath.Dir(d.opts.Store.Path) {
		d.reloadSettings(false)
		return
	}
	d.checkTheme()
}

// iterate is one loop pass: resilience checks, then both input checks, then
// the animation decision.
func (d *Driver) iterate(now time.Time) error {
	if gap, jumped := d.detector.Observe(now); jumped {
		d.opts.Recorder.SuspendResume()
		d.log.Warn().Dur("gap", gap).Msg("Suspend/resume detected")
		return ErrSuspendResume.WithData(gap.String())
	}

	d.checkMetrics()

	if now.Sub(d.lastPoll) >= d.opts.Poll {
		d.lastPoll = now
		d.reloadSettings(false)
		d.checkTheme()
	}

	reading := metrics.Select(d.cfg.AnimationSource, d.snapshot, d.smoothed)
	d.opts.Recorder.Reading(reading)
	d.state.Tick(reading, animation.ParamsFor(d.cfg), now)

	d.present(reading)
	d.refreshLock(now)

	return nil
}

func (d *Driver) checkMetrics() {
	snap := d.opts.Sampler.Latest()
	if snap == nil || snap.Seq == d.lastSeq {
		return
	}

	d.lastSeq = snap.Seq
	d.snapshot = *snap

	usage := snap.Usage.Total
	if math.IsNaN(usage) {
		usage = 0
	}
	// every sample enters the window; only a real change forces a redraw
	d.smoothed = d.window.Push(usage)
	if smooth.Changed(d.lastRaw, usage) {
		d.dirty = true
	}
	d.lastRaw = usage
}

func (d *Driver) reloadSettings(force bool) {
	mod := d.opts.Store.ModTime()
	if !force && mod.Equal(d.cfgModTime) {
		return
	}
	d.cfgModTime = mod

	cfg := d.opts.Store.Load()
	if !force && cfg == d.cfg {
		return
	}

	if !force {
		d.opts.Recorder.ConfigReloaded()
		d.log.Info().
			Str("source", cfg.AnimationSource.String()).
			Float64("threshold", cfg.CurrentThreshold()).
			Msg("Settings reloaded")
	}
	d.cfg = cfg
	d.dirty = true
}

func (d *Driver) checkTheme() {
	if d.opts.Theme == nil {
		if !d.themeLoaded {
			d.applyColors(theme.DefaultColors())
			d.themeLoaded = true
		}
		return
	}

	mod := d.opts.Theme.ModTime()
	if d.themeLoaded && mod.Equal(d.themeModTime) {
		return
	}
	d.themeModTime = mod
	d.themeLoaded = true

	colors, err := d.opts.Theme.Colors()
	if err != nil {
		// no theme is a normal state
		d.log.Debug().Err(err).Msg("Theme unavailable, using defaults")
		colors = theme.DefaultColors()
	}
	d.applyColors(colors)
}

func (d *Driver) applyColors(colors theme.Colors) {
	if d.opts.Sprites.UpdateColors(colors.Foreground) {
		d.opts.Recorder.Recolored()
		d.log.Debug().Str("color", colors.Foreground.String()).Bool("dark", colors.Dark).Msg("Sprites recolored")
		d.dirty = true
	}
}

func (d *Driver) present(r metrics.Reading) {
	f := Frame{
		Index:       d.state.Frame,
		Sleeping:    d.state.Sleeping,
		Source:      r.Source,
		Percent:     r.Percent,
		Actual:      r.Actual,
		FPS:         d.state.FPS,
		ShowOverlay: d.cfg.ShowPercentage && r.Source == metrics.SourceUsage && !d.state.Sleeping,
		Image:       d.opts.Sprites.Frame(d.state.Frame, d.state.Sleeping),
	}

	if !d.dirty && d.last != nil && sameView(*d.last, f) {
		return
	}

	d.opts.Recorder.Animation(f.FPS, f.Index, f.Sleeping)
	if err := d.opts.Presenter.Present(f); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			d.log.ErrorWithCode(appErr).Msg("Present failed")
		} else {
			d.log.Error().Err(err).Msg("Present failed")
		}
	}

	d.last = &f
	d.dirty = false
}

// sameView reports whether b would look identical to a on screen.
func sameView(a, b Frame) bool {
	if a.Index != b.Index || a.Sleeping != b.Sleeping || a.ShowOverlay != b.ShowOverlay || a.Source != b.Source {
		return false
	}
	if b.ShowOverlay {
		return a.Label() == b.Label()
	}

	return true
}

func (d *Driver) refreshLock(now time.Time) {
	if d.opts.Lock == nil || now.Sub(d.lastRefresh) < pid.RefreshInterval {
		return
	}
	d.lastRefresh = now

	if err := d.opts.Lock.Refresh(); err != nil {
		d.log.Warn().Err(err).Msg("Failed to refresh lock")
	}
}

// State returns the current animation state.
func (d *Driver) State() animation.State {
	return d.state
}

// Settings returns the active settings.
func (d *Driver) Settings() settings.Config {
	return d.cfg
}
