// Package watch implements watch mode: rebuild on content changes,
// optional scheduled deploys, and a small status endpoint.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ContentWatcher monitors the content tree and triggers a debounced
// rebuild callback when Markdown files change.
type ContentWatcher struct {
	contentDir   string
	onChange     func(ctx context.Context)
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	stopChan     chan struct{}
	stopOnce     sync.Once
	rebuildChan  chan struct{}
	debounceTime time.Duration
}

// NewContentWatcher creates a watcher over contentDir. onChange runs after
// the debounce window closes; bursts of file events coalesce into one call.
func NewContentWatcher(contentDir string, debounce time.Duration, onChange func(ctx context.Context)) (*ContentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(contentDir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve content dir: %w", err)
	}

	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	return &ContentWatcher{
		contentDir:   absDir,
		onChange:     onChange,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		rebuildChan:  make(chan struct{}, 1),
		debounceTime: debounce,
	}, nil
}

// Start begins monitoring the content tree.
//
// fsnotify does not recurse, so every directory under contentDir is added
// individually; directories created later are picked up from Create events.
func (cw *ContentWatcher) Start(ctx context.Context) error {
	if err := cw.addRecursive(cw.contentDir); err != nil {
		return err
	}

	slog.Info("Starting content watcher", "content_dir", cw.contentDir, "debounce", cw.debounceTime)

	go cw.watchLoop(ctx)
	go cw.rebuildLoop(ctx)

	return nil
}

// Stop stops the watcher.
func (cw *ContentWatcher) Stop() error {
	slog.Info("Stopping content watcher")
	cw.stopOnce.Do(func() { close(cw.stopChan) })
	return cw.watcher.Close()
}

func (cw *ContentWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if werr := cw.watcher.Add(path); werr != nil {
			return fmt.Errorf("failed to watch %s: %w", path, werr)
		}
		return nil
	})
}

// watchLoop translates file system events into rebuild triggers.
func (cw *ContentWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}

			if cw.isIgnored(event.Name) {
				continue
			}

			if event.Op.Has(fsnotify.Create) {
				// New directories need their own watch to catch nested edits.
				if err := cw.addRecursive(event.Name); err != nil {
					slog.Debug("Could not watch created path", "path", event.Name, "error", err)
				}
			}

			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				slog.Debug("Content change detected", "file", event.Name, "op", event.Op.String())
				cw.triggerRebuild()
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Content watcher error", "error", err)
		}
	}
}

// rebuildLoop handles debounced rebuilds.
func (cw *ContentWatcher) rebuildLoop(ctx context.Context) {
	var rebuildTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			return
		case <-cw.stopChan:
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			return
		case <-cw.rebuildChan:
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			rebuildTimer = time.AfterFunc(cw.debounceTime, func() {
				cw.onChange(ctx)
			})
		}
	}
}

// triggerRebuild queues a debounced rebuild.
func (cw *ContentWatcher) triggerRebuild() {
	select {
	case cw.rebuildChan <- struct{}{}:
	default:
		// Rebuild already pending
	}
}

// isIgnored filters editor noise: hidden files, backup files, and anything
// inside a dot-directory.
func (cw *ContentWatcher) isIgnored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return true
	}
	rel, err := filepath.Rel(cw.contentDir, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
