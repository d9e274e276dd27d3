package driver

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/logger"
	"codeberg.org/mutker/runkat/internal/metrics"
	"github.com/disintegration/imaging"
)

// Frame is one presentation state: what the panel icon should show.
type Frame struct {
	Index       int
	Sleeping    bool
	Source      metrics.Source
	Percent     float64
	Actual      float64
	FPS         float64
	ShowOverlay bool
	Image       *image.NRGBA
}

// Label is the overlay text, e.g. "42%" or "2400 MHz".
func (f Frame) Label() string {
	switch f.Source {
	case metrics.SourceUsage:
		return fmt.Sprintf("%.0f%%", f.Actual)
	case metrics.SourceFrequency:
		return fmt.Sprintf("%.0f MHz", f.Actual)
	default:
		return fmt.Sprintf("%.0f%s", f.Actual, f.Source.Unit())
	}
}

// Presenter displays frames. Present is called from the driver goroutine
// only when something visible changed.
type Presenter interface {
	Present(f Frame) error
	Close() error
}

// LogPresenter writes each frame as a structured debug event.
type LogPresenter struct {
	log logger.Logger
}

func NewLogPresenter() *LogPresenter {
	return &LogPresenter{log: logger.New("presenter")}
}

func (p *LogPresenter) Present(f Frame) error {
	ev := p.log.Debug().
		Int("frame", f.Index).
		Bool("sleeping", f.Sleeping).
		Str("source", f.Source.String()).
		Float64("fps", f.FPS)
	if f.ShowOverlay {
		ev = ev.Str("label", f.Label())
	}
	ev.Msg("Frame")

	return nil
}

func (p *LogPresenter) Close() error { return nil }

// PNGPresenter writes the current sprite to Path, replacing it atomically,
// for panels that display an image file.
type PNGPresenter struct {
	Path string

	errFactory errors.Factory
}

func NewPNGPresenter(path string) *PNGPresenter {
	return &PNGPresenter{Path: path, errFactory: errors.New()}
}

func (p *PNGPresenter) Present(f Frame) error {
	if f.Image == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return p.errFactory.Wrap(errors.ErrPresentFailed, err)
	}

	// imaging picks the encoder from the extension
	tmp := p.Path + ".tmp.png"
	if err := imaging.Save(f.Image, tmp); err != nil {
		os.Remove(tmp)
		return p.errFactory.Wrap(errors.ErrPresentFailed, err)
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		os.Remove(tmp)
		return p.errFactory.Wrap(errors.ErrPresentFailed, err)
	}

	return nil
}

// Close leaves the last frame in place.
func (p *PNGPresenter) Close() error { return nil }
