package theme

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Cache holds the original sprites and their recolored copies. The driver
// goroutine owns it.
type Cache struct {
	frames []*image.NRGBA
	sleep  *image.NRGBA

	coloredFrames []*image.NRGBA
	coloredSleep  *image.NRGBA

	last     *Color
	recolors int
}

// NewCache takes the run frames and the sleep sprite. Until UpdateColors is
// called the colored set equals the originals.
func NewCache(frames []image.Image, sleep image.Image) *Cache {
	c := &Cache{
		frames: make([]*image.NRGBA, len(frames)),
		sleep:  imaging.Clone(sleep),
	}
	for i, f := range frames {
		c.frames[i] = imaging.Clone(f)
	}

	c.coloredFrames = make([]*image.NRGBA, len(c.frames))
	copy(c.coloredFrames, c.frames)
	c.coloredSleep = c.sleep

	return c
}

// UpdateColors recolors every sprite to col. It does nothing if col was the
// last color applied, and reports whether work was done.
func (c *Cache) UpdateColors(col Color) bool {
	if c.last != nil && *c.last == col {
		return false
	}

	for i, f := range c.frames {
		c.coloredFrames[i] = Recolor(f, col)
	}
	c.coloredSleep = Recolor(c.sleep, col)

	c.last = &col
	c.recolors++

	return true
}

// Frame returns colored run frame i, or the sleep sprite.
func (c *Cache) Frame(i int, sleeping bool) *image.NRGBA {
	if sleeping || len(c.coloredFrames) == 0 {
		return c.coloredSleep
	}

	return c.coloredFrames[((i%len(c.coloredFrames))+len(c.coloredFrames))%len(c.coloredFrames)]
}

// Len returns the number of run frames.
func (c *Cache) Len() int {
	return len(c.frames)
}

// Last returns the last applied color.
func (c *Cache) Last() (Color, bool) {
	if c.last == nil {
		return Color{}, false
	}

	return *c.last, true
}

// Recolors counts how many times the set was recolored.
func (c *Cache) Recolors() int {
	return c.recolors
}

// Recolor replaces the RGB of every pixel with nonzero alpha, keeping alpha.
// Fully transparent pixels are left untouched.
func Recolor(img image.Image, col Color) *image.NRGBA {
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		if px.A == 0 {
			return px
		}
		return color.NRGBA{R: col.R, G: col.G, B: col.B, A: px.A}
	})
}
