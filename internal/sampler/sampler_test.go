package sampler_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/metrics"
	"codeberg.org/mutker/runkat/internal/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingReader serves a fixed /proc/stat fixture and counts cycles.
type countingReader struct {
	*metrics.Reader

	mu     sync.Mutex
	cycles int
}

func (c *countingReader) ReadTemperature() metrics.Temperature {
	c.mu.Lock()
	c.cycles++
	c.mu.Unlock()

	return c.Reader.ReadTemperature()
}

func newReader(t *testing.T) *countingReader {
	t.Helper()
	root := t.TempDir()
	stat := filepath.Join(root, "stat")
	require.NoError(t, os.WriteFile(stat, []byte("cpu  10 0 10 80 0 0 0\n"), 0o600))

	return &countingReader{Reader: &metrics.Reader{
		ProcStat: stat,
		CPUDir:   filepath.Join(root, "cpu"),
		HwmonDir: filepath.Join(root, "hwmon"),
	}}
}

func TestPublishesIncreasingSeq(t *testing.T) {
	s := sampler.New(newReader(t), 10*time.Millisecond, nil)
	assert.Nil(t, s.Latest())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		s.Stop()
		s.Wait()
	}()

	var seqs []uint64
	for len(seqs) < 3 {
		select {
		case <-s.Updates():
			snap := s.Latest()
			require.NotNil(t, snap)
			seqs = append(seqs, snap.Seq)
		case <-time.After(2 * time.Second):
			t.Fatal("no update from sampler")
		}
	}

	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := sampler.New(newReader(t), 10*time.Millisecond, nil)

	// before start
	s.Stop()
	s.Wait()

	s = sampler.New(newReader(t), 10*time.Millisecond, nil)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()
	s.Wait()
	s.Wait()
}

func TestStartTwice(t *testing.T) {
	s := sampler.New(newReader(t), 10*time.Millisecond, nil)
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		s.Stop()
		s.Wait()
	}()

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrSamplerRunning))
}

func TestContextCancelStops(t *testing.T) {
	r := newReader(t)
	s := sampler.New(r, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	waited := make(chan struct{})
	go func() {
		s.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("sampler goroutine leaked after cancel")
	}
}

func TestStopLatencyBoundedByInterval(t *testing.T) {
	s := sampler.New(newReader(t), time.Hour, nil)
	require.NoError(t, s.Start(context.Background()))

	start := time.Now()
	s.Stop()
	s.Wait()
	assert.Less(t, time.Since(start), time.Second)
	assert.Nil(t, s.Latest(), "interrupted window is not published")
}

func TestSlowReaderSeesLatestOnly(t *testing.T) {
	r := newReader(t)
	s := sampler.New(r, 5*time.Millisecond, nil)
	require.NoError(t, s.Start(context.Background()))

	time.Sleep(100 * time.Millisecond)
	s.Stop()
	s.Wait()

	r.mu.Lock()
	cycles := r.cycles
	r.mu.Unlock()

	snap := s.Latest()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(cycles), snap.Seq)

	// one pending signal at most
	<-s.Updates()
	select {
	case <-s.Updates():
		t.Fatal("updates should coalesce")
	default:
	}
}

func TestDefaultInterval(t *testing.T) {
	s := sampler.New(newReader(t), 0, nil)
	assert.Equal(t, sampler.DefaultInterval, s.Interval())
}
