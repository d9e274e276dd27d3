// Package pid implements lock files for singleton process roles.
package pid

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/runkat/internal/errors"
)

// Role names a singleton process role.
type Role string

const (
	RoleDriver   Role = "driver"
	RoleSettings Role = "settings"
)

const (
	// DefaultStaleness is how old a lock may be before it counts as abandoned.
	DefaultStaleness = 60 * time.Second
	// RefreshInterval is how often a holder should call Refresh.
	RefreshInterval = 30 * time.Second
)

// overridden in tests
var bootTime = systemBootTime

// Dir returns the per-user lock directory.
func Dir() string {
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		return filepath.Join(runtime, "runkat")
	}

	return filepath.Join(os.TempDir(), fmt.Sprintf("runkat-%d", os.Getuid()))
}

// PathFor returns the lock file path of role.
func PathFor(role Role) string {
	return filepath.Join(Dir(), string(role)+".lock")
}

// Lock is a lock file holding the owner's decimal PID.
type Lock struct {
	Path      string
	Staleness time.Duration

	errFactory errors.Factory
}

// New returns the lock for role at its default path.
func New(role Role) *Lock {
	return At(PathFor(role))
}

// At returns a lock at path.
func At(path string) *Lock {
	return &Lock{
		Path:       path,
		Staleness:  DefaultStaleness,
		errFactory: errors.New(),
	}
}

// Acquire writes the current PID. It fails with ErrAlreadyRunning when a
// fresh lock is held by another live process. Stale locks are taken over.
func (l *Lock) Acquire() error {
	if owner, ok := Owner(l.Path, l.Staleness); ok && owner != os.Getpid() {
		return l.errFactory.WithData(errors.ErrAlreadyRunning, fmt.Sprintf("pid %d", owner))
	}

	if err := os.MkdirAll(filepath.Dir(l.Path), 0o700); err != nil {
		return l.errFactory.Wrap(errors.ErrLockFile, err)
	}

	return l.write()
}

// Refresh rewrites the lock so its modification time stays within the
// staleness window.
func (l *Lock) Refresh() error {
	return l.write()
}

func (l *Lock) write() error {
	err := os.WriteFile(l.Path, []byte(strconv.Itoa(os.Getpid())), 0o600)
	if err != nil {
		return l.errFactory.Wrap(errors.ErrLockFile, err)
	}

	return nil
}

// Release removes the lock if this process owns it.
func (l *Lock) Release() error {
	owner, err := readPID(l.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err == nil && owner != os.Getpid() {
		return nil
	}

	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		return l.errFactory.Wrap(errors.ErrLockFile, err)
	}

	return nil
}

// IsRunning reports whether the lock at path is fresh and held by a live
// process.
func IsRunning(path string, window time.Duration) bool {
	_, ok := Owner(path, window)
	return ok
}

// Owner returns the PID holding a fresh lock at path. A lock is fresh when
// it was modified within window and after the system booted; locks left by
// a previous boot are always stale.
func Owner(path string, window time.Duration) (int, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}

	mtime := info.ModTime()
	if time.Since(mtime) > window {
		return 0, false
	}
	if boot := bootTime(); !boot.IsZero() && mtime.Before(boot) {
		return 0, false
	}

	owner, err := readPID(path)
	if err != nil || !alive(owner) {
		return 0, false
	}

	return owner, true
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))

	// EPERM means the process exists under another user
	return err == nil || errors.Is(err, syscall.EPERM)
}
