package driver

import (
	"os"

	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports filesystem changes in the settings and theme directories.
// Polling stays in effect, so directories that do not exist yet are skipped.
type Watcher struct {
	fs  *fsnotify.Watcher
	log logger.Logger
}

// Watch starts watching the existing directories among dirs.
func Watch(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInitFailed, err)
	}

	w := &Watcher{fs: fw, log: logger.New("watch")}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			w.log.Debug().Str("dir", dir).Msg("Not watching missing directory")
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.log.Warn().Err(err).Str("dir", dir).Msg("Failed to watch directory")
		}
	}

	return w, nil
}

// Events is nil for a nil Watcher, which blocks forever in a select.
func (w *Watcher) Events() <-chan fsnotify.Event {
	if w == nil {
		return nil
	}

	return w.fs.Events
}

func (w *Watcher) Errors() <-chan error {
	if w == nil {
		return nil
	}

	return w.fs.Errors
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}

	return w.fs.Close()
}
