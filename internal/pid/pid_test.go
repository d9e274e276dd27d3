package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"codeberg.org/mutker/runkat/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// well above any pid_max
const deadPID = 2147483646

func writeLock(t *testing.T, path string, pid int, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func withBootTime(t *testing.T, boot time.Time) {
	t.Helper()
	orig := bootTime
	bootTime = func() time.Time { return boot }
	t.Cleanup(func() { bootTime = orig })
}

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "driver.lock")
	l := At(path)

	require.NoError(t, l.Acquire())
	assert.True(t, IsRunning(path, DefaultStaleness))

	owner, ok := Owner(path, DefaultStaleness)
	require.True(t, ok)
	assert.Equal(t, os.Getpid(), owner)

	// re-acquiring our own lock is fine
	require.NoError(t, l.Acquire())

	require.NoError(t, l.Release())
	assert.False(t, IsRunning(path, DefaultStaleness))
	require.NoError(t, l.Release())
}

func TestAcquireHeldByOtherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driver.lock")
	// pid 1 is always alive
	writeLock(t, path, 1, time.Now())

	err := At(path).Acquire()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
}

func TestAcquireTakesOverStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driver.lock")
	writeLock(t, path, 1, time.Now().Add(-2*DefaultStaleness))

	require.NoError(t, At(path).Acquire())
	owner, ok := Owner(path, DefaultStaleness)
	require.True(t, ok)
	assert.Equal(t, os.Getpid(), owner)
}

func TestDeadOwnerIsNotRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.lock")
	writeLock(t, path, deadPID, time.Now())

	assert.False(t, IsRunning(path, DefaultStaleness))
	require.NoError(t, At(path).Acquire())
}

func TestPreviousBootIsStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driver.lock")
	mtime := time.Now().Add(-10 * time.Second)
	writeLock(t, path, 1, mtime)

	withBootTime(t, time.Now().Add(-time.Hour))
	assert.True(t, IsRunning(path, DefaultStaleness))

	// rebooted after the lock was written
	withBootTime(t, time.Now().Add(-5*time.Second))
	assert.False(t, IsRunning(path, time.Hour))
}

func TestRefreshKeepsLockFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driver.lock")
	l := At(path)
	require.NoError(t, l.Acquire())

	old := time.Now().Add(-2 * DefaultStaleness)
	require.NoError(t, os.Chtimes(path, old, old))
	assert.False(t, IsRunning(path, DefaultStaleness))

	require.NoError(t, l.Refresh())
	assert.True(t, IsRunning(path, DefaultStaleness))
}

func TestReleaseLeavesForeignLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driver.lock")
	writeLock(t, path, 1, time.Now())

	require.NoError(t, At(path).Release())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestDirUsesRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/runkat/driver.lock", PathFor(RoleDriver))

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Contains(t, PathFor(RoleSettings), "runkat-")
}
