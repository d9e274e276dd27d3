package theme

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"codeberg.org/mutker/runkat/internal/errors"
	"github.com/disintegration/imaging"
)

const (
	// SpriteSize is the edge length of generated sprites.
	SpriteSize = 32

	sleepSprite = "sleep.png"
)

// RunSpriteName returns the file name of run frame i.
func RunSpriteName(i int) string {
	return fmt.Sprintf("run-%d.png", i)
}

// LoadSprites decodes count run frames and the sleep sprite from dir.
// Missing files, or an empty dir, fall back to generated sprites; a file
// that exists but cannot be decoded is an error.
func LoadSprites(dir string, count int) ([]image.Image, image.Image, error) {
	errFactory := errors.New()

	frames := make([]image.Image, count)
	for i := range frames {
		img, err := loadOne(dir, RunSpriteName(i))
		if err != nil {
			return nil, nil, errFactory.Wrap(errors.ErrLoadSprites, err)
		}
		if img == nil {
			img = FallbackSprite(i, count, false)
		}
		frames[i] = img
	}

	sleep, err := loadOne(dir, sleepSprite)
	if err != nil {
		return nil, nil, errFactory.Wrap(errors.ErrLoadSprites, err)
	}
	if sleep == nil {
		sleep = FallbackSprite(0, count, true)
	}

	return frames, sleep, nil
}

func loadOne(dir, name string) (image.Image, error) {
	if dir == "" {
		return nil, nil
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	return imaging.Open(path)
}

// FallbackSprite draws a simple white silhouette: a body with a leg that
// swings with the frame, or a flat loaf when sleeping.
func FallbackSprite(frame, count int, sleeping bool) *image.NRGBA {
	img := imaging.New(SpriteSize, SpriteSize, color.NRGBA{})
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	fill := func(x0, y0, x1, y1 int) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				img.SetNRGBA(x, y, white)
			}
		}
	}

	if sleeping {
		fill(4, 20, 28, 28)
		fill(22, 16, 28, 20)
		return img
	}

	// body and head
	fill(6, 12, 24, 20)
	fill(22, 8, 28, 14)

	if count < 1 {
		count = 1
	}
	swing := (frame % count) * 8 / count
	fill(8+swing, 20, 10+swing, 26)
	fill(20-swing, 20, 22-swing, 26)

	return img
}
