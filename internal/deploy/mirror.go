package deploy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	bperrors "git.home.luguber.info/inful/blogpub/internal/errors"
	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
	"git.home.luguber.info/inful/blogpub/internal/retry"
)

// Result summarizes an applied mirror run.
//
// A run with Failed > 0 completed partially: every failure is listed in
// Failures, everything else went through.
type Result struct {
	Uploaded int
	Deleted  int
	Skipped  int
	Failed   int
	Bytes    int64
	Duration time.Duration
	Failures []error
}

// Mirror applies deployment plans against a Remote.
type Mirror struct {
	remote      Remote
	remoteDir   string
	localDir    string
	concurrency int
	policy      retry.Policy
	recorder    metrics.Recorder
}

// NewMirror creates a mirror for one local/remote directory pair.
func NewMirror(localDir string, remote Remote, remoteDir string, concurrency int, policy retry.Policy) *Mirror {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Mirror{
		remote:      remote,
		remoteDir:   remoteDir,
		localDir:    localDir,
		concurrency: concurrency,
		policy:      policy,
		recorder:    metrics.NoopRecorder{},
	}
}

// WithRecorder injects a metrics recorder.
func (m *Mirror) WithRecorder(r metrics.Recorder) *Mirror {
	if r != nil {
		m.recorder = r
	}
	return m
}

// Plan computes the operations needed to make the remote mirror the local tree.
func (m *Mirror) Plan(withDelete bool) (*Plan, error) {
	return BuildPlan(m.localDir, m.remote, m.remoteDir, withDelete)
}

// Apply executes a plan: directories first, then transfers on a bounded
// worker pool, then deletions (files before their directories).
//
// Per-file failures are collected, not fatal; the caller decides based on
// Result.Failed whether the deploy counts as partial.
func (m *Mirror) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	start := time.Now()
	result := &Result{Skipped: plan.Skipped}

	for _, dir := range plan.Dirs {
		if err := m.remote.MkdirAll(path.Join(m.remoteDir, dir)); err != nil {
			// Without the directory every file beneath it fails; stop early.
			return result, bperrors.TransferError(dir, err)
		}
	}
	if len(plan.Dirs) == 0 {
		// First deploy to a fresh target still needs the root.
		if err := m.remote.MkdirAll(m.remoteDir); err != nil {
			return result, bperrors.TransferError(m.remoteDir, err)
		}
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, m.concurrency)
		canceled bool
	)

	for _, entry := range plan.Transfers {
		if ctx.Err() != nil {
			canceled = true
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(e Entry) {
			defer wg.Done()
			defer func() { <-sem }()

			n, err := m.transferWithRetry(ctx, e)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Failures = append(result.Failures, err)
				slog.Error("File transfer failed", logfields.Path(e.RelPath), logfields.Error(err))
				return
			}
			result.Uploaded++
			result.Bytes += n
			slog.Debug("Transferred file", logfields.Path(e.RelPath), logfields.Bytes(n), "action", string(e.Action))
		}(entry)
	}
	wg.Wait()

	if canceled {
		result.Duration = time.Since(start)
		return result, ctx.Err()
	}

	for _, entry := range plan.Deletes {
		if ctx.Err() != nil {
			result.Duration = time.Since(start)
			return result, ctx.Err()
		}
		if err := m.remote.Remove(path.Join(m.remoteDir, entry.RelPath)); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, bperrors.TransferError(entry.RelPath, err))
			slog.Error("Remote delete failed", logfields.Path(entry.RelPath), logfields.Error(err))
			continue
		}
		result.Deleted++
		slog.Debug("Deleted remote file", logfields.Path(entry.RelPath))
	}

	for _, dir := range plan.DeleteDirs {
		if err := m.remote.RemoveDirectory(path.Join(m.remoteDir, dir)); err != nil {
			// A failed file delete above leaves the directory non-empty; report once.
			result.Failures = append(result.Failures, bperrors.TransferError(dir, err))
			slog.Warn("Remote directory delete failed", logfields.Path(dir), logfields.Error(err))
		}
	}

	result.Duration = time.Since(start)
	m.recorder.ObserveDeployDuration(result.Duration)
	m.recorder.AddFilesTransferred(result.Uploaded)
	m.recorder.AddFilesDeleted(result.Deleted)
	return result, nil
}

// transferWithRetry uploads one file, retrying transient failures under the
// configured backoff policy.
func (m *Mirror) transferWithRetry(ctx context.Context, e Entry) (int64, error) {
	var lastErr error
	for attempt := 0; attempt <= m.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			m.recorder.IncTransferRetry()
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(m.policy.Delay(attempt)):
			}
			slog.Debug("Retrying transfer", logfields.Path(e.RelPath), "attempt", attempt)
		}

		n, err := m.transfer(e)
		if err == nil {
			return n, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if !bperrors.IsRetryable(err) {
			break
		}
	}
	return 0, bperrors.TransferError(e.RelPath, lastErr)
}

func (m *Mirror) transfer(e Entry) (int64, error) {
	localPath := filepath.Join(m.localDir, filepath.FromSlash(e.RelPath))
	src, err := os.Open(localPath)
	if err != nil {
		return 0, bperrors.LocalFileError(e.RelPath, err)
	}
	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil {
		return 0, bperrors.LocalFileError(e.RelPath, err)
	}

	remotePath := path.Join(m.remoteDir, e.RelPath)
	dst, err := m.remote.Create(remotePath)
	if err != nil {
		return 0, fmt.Errorf("create remote file: %w", err)
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("copy to remote: %w", err)
	}

	// Align the remote mtime so the next plan sees the file as unchanged.
	if err := m.remote.Chtimes(remotePath, time.Now(), info.ModTime()); err != nil {
		slog.Debug("Could not set remote mtime", logfields.Path(remotePath), logfields.Error(err))
	}

	return n, nil
}
