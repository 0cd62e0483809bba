// Package workspace manages the staging directory a deploy builds into.
//
// Deploys never mirror the working tree's publish directory directly: the
// site is built into a staging directory first, so a failed build cannot
// leave a half-written tree to be synchronized.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Staging is a build staging directory, ephemeral by default.
type Staging struct {
	baseDir    string
	dir        string
	persistent bool
}

// New creates a staging manager using timestamped directories under baseDir
// (os.TempDir when empty). Each Create call yields a fresh directory that
// Cleanup removes.
func New(baseDir string) *Staging {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Staging{baseDir: baseDir}
}

// NewPersistent creates a staging manager with a fixed directory that
// survives Cleanup. Watch mode reuses it across rebuilds.
func NewPersistent(baseDir, name string) *Staging {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if name == "" {
		name = "staging"
	}
	return &Staging{
		baseDir:    baseDir,
		dir:        filepath.Join(baseDir, name),
		persistent: true,
	}
}

// Create makes the staging directory available.
func (s *Staging) Create() error {
	if s.persistent {
		if err := os.MkdirAll(s.dir, 0o750); err != nil {
			return fmt.Errorf("failed to create persistent staging directory: %w", err)
		}
		slog.Debug("Using persistent staging directory", "path", s.dir)
		return nil
	}

	timestamp := time.Now().Format("20060102-150405")
	dir := filepath.Join(s.baseDir, fmt.Sprintf("blogpub-%s", timestamp))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	s.dir = dir
	slog.Debug("Created staging directory", "path", dir)
	return nil
}

// Path returns the staging directory path.
func (s *Staging) Path() string {
	return s.dir
}

// Cleanup removes an ephemeral staging directory; persistent ones are kept.
func (s *Staging) Cleanup() error {
	if s.dir == "" || s.persistent {
		return nil
	}

	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to cleanup staging directory: %w", err)
	}

	slog.Debug("Removed staging directory", "path", s.dir)
	s.dir = ""
	return nil
}
