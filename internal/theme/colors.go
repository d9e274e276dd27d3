// Package theme follows the desktop's foreground color and recolors the
// sprite set to match it.
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Color is an opaque RGB triple.
type Color struct {
	R, G, B uint8
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Colors is what the desktop theme provides.
type Colors struct {
	Foreground Color
	Dark       bool
}

// DefaultColors is used whenever the theme cannot be read.
func DefaultColors() Colors {
	return Colors{Foreground: Color{R: 200, G: 200, B: 200}, Dark: true}
}

// Source provides the current theme colors.
type Source interface {
	Colors() (Colors, error)
	// ModTime changes whenever Colors may return something new.
	ModTime() time.Time
}

// FileSource reads the COSMIC theme files under Dir
// (usually ~/.config/cosmic).
type FileSource struct {
	Dir string
}

// DefaultFileSource returns a FileSource for the current user.
func DefaultFileSource() *FileSource {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}

	return &FileSource{Dir: filepath.Join(dir, "cosmic")}
}

func (s *FileSource) modePath() string {
	return filepath.Join(s.Dir, "com.system76.CosmicTheme.Mode", "v1", "is_dark")
}

func (s *FileSource) backgroundPath(dark bool) string {
	mode := "Light"
	if dark {
		mode = "Dark"
	}

	return filepath.Join(s.Dir, "com.system76.CosmicTheme."+mode, "v1", "background")
}

// WatchDirs returns the directories whose changes may alter the colors.
func (s *FileSource) WatchDirs() []string {
	return []string{
		filepath.Dir(s.modePath()),
		filepath.Dir(s.backgroundPath(true)),
		filepath.Dir(s.backgroundPath(false)),
	}
}

// Colors reads the dark flag and the "on" color of the active background.
func (s *FileSource) Colors() (Colors, error) {
	mode, err := os.ReadFile(s.modePath())
	if err != nil {
		return DefaultColors(), err
	}
	dark := strings.TrimSpace(string(mode)) == "true"

	bg, err := os.ReadFile(s.backgroundPath(dark))
	if err != nil {
		return DefaultColors(), err
	}

	fg, ok := parseColor(string(bg), "on")
	if !ok {
		return DefaultColors(), fmt.Errorf("no %q color in %s", "on", s.backgroundPath(dark))
	}

	return Colors{Foreground: fg, Dark: dark}, nil
}

// ModTime returns the newest modification time of the theme files.
func (s *FileSource) ModTime() time.Time {
	var newest time.Time
	for _, p := range []string{s.modePath(), s.backgroundPath(true), s.backgroundPath(false)} {
		if info, err := os.Stat(p); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}

	return newest
}

// parseColor finds `name: (red: R, green: G, blue: B, ...)` with channels
// in [0, 1].
func parseColor(content, name string) (Color, bool) {
	_, rest, found := strings.Cut(content, name+":")
	if !found {
		return Color{}, false
	}

	start := strings.IndexByte(rest, '(')
	if start < 0 {
		return Color{}, false
	}
	end := strings.IndexByte(rest[start:], ')')
	if end < 0 {
		return Color{}, false
	}
	block := rest[start+1 : start+end]

	var ch [3]uint8
	for i, key := range []string{"red", "green", "blue"} {
		v, ok := channel(block, key)
		if !ok {
			return Color{}, false
		}
		ch[i] = v
	}

	return Color{R: ch[0], G: ch[1], B: ch[2]}, true
}

func channel(block, key string) (uint8, bool) {
	_, rest, found := strings.Cut(block, key+":")
	if !found {
		return 0, false
	}
	raw, _, _ := strings.Cut(rest, ",")

	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}

	return uint8(f * 255), true
}
