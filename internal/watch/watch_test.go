package watch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContentWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	cw, err := NewContentWatcher(dir, 100*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cw.Start(ctx))
	defer cw.Stop()

	// A burst of writes inside the debounce window should yield one rebuild.
	for i := range 3 {
		path := filepath.Join(dir, "post.md")
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, 2*time.Second, 20*time.Millisecond)

	// Quiet period, then a second change triggers a second rebuild.
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestContentWatcherIgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	cw, err := NewContentWatcher(dir, 50*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cw.Start(ctx))
	defer cw.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".post.md.swp"), []byte("tmp"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft.md~"), []byte("tmp"), 0o644))

	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(0), calls.Load())
}

func TestContentWatcherPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	cw, err := NewContentWatcher(dir, 50*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cw.Start(ctx))
	defer cw.Stop()

	sub := filepath.Join(dir, "bundle")
	require.NoError(t, os.Mkdir(sub, 0o755))

	require.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, 2*time.Second, 20*time.Millisecond)

	// Wait out the debounce, then edit inside the new directory.
	time.Sleep(100 * time.Millisecond)
	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(sub, "index.md"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return calls.Load() > before
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSchedulerRunsPeriodicDeploy(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)

	var runs atomic.Int32
	id, err := s.SchedulePeriodicDeploy(30*time.Millisecond, func() {
		runs.Add(1)
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s.Start()
	defer func() { require.NoError(t, s.Stop()) }()

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 3*time.Second, 10*time.Millisecond)
}

func TestStatusEndpoint(t *testing.T) {
	tracker := NewStatusTracker()
	tracker.RecordBuild()
	tracker.RecordDeploy("success", nil)

	srv := NewServer("127.0.0.1:0", tracker, nil)

	ts := httptest.NewServer(srv.server.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Equal(t, "application/json", resp2.Header.Get("Content-Type"))

	snap := tracker.Snapshot()
	require.Equal(t, 1, snap.Builds)
	require.Equal(t, 1, snap.Deploys)
	require.Equal(t, "success", snap.LastOutcome)
}
