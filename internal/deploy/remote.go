// Package deploy mirrors a local build-output tree onto a remote directory.
//
// This is the Go rendition of the blog's deploy step: synchronize local files
// to the remote host over an authenticated, encrypted transport, deleting
// remote files absent locally. The mirror is planned before any mutation.
package deploy

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Remote is the minimal filesystem surface the mirror needs on the target.
//
// The SFTP client implements it for real deploys; DirRemote implements it
// over a local directory for tests and dry runs against a staging path.
// Remote paths always use forward slashes.
type Remote interface {
	Stat(p string) (os.FileInfo, error)
	ReadDir(p string) ([]os.FileInfo, error)
	MkdirAll(p string) error
	Create(p string) (io.WriteCloser, error)
	Remove(p string) error
	RemoveDirectory(p string) error
	Chtimes(p string, atime, mtime time.Time) error
	Close() error
}

// DirRemote implements Remote over a local directory.
type DirRemote struct {
	Root string
}

func (d *DirRemote) abs(p string) string {
	return filepath.Join(d.Root, filepath.FromSlash(p))
}

func (d *DirRemote) Stat(p string) (os.FileInfo, error) { return os.Stat(d.abs(p)) }

func (d *DirRemote) ReadDir(p string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(d.abs(p))
	if err != nil {
		return nil, err
	}
	infos := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (d *DirRemote) MkdirAll(p string) error { return os.MkdirAll(d.abs(p), 0o755) }

func (d *DirRemote) Create(p string) (io.WriteCloser, error) {
	f, err := os.Create(d.abs(p))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (d *DirRemote) Remove(p string) error { return os.Remove(d.abs(p)) }

func (d *DirRemote) RemoveDirectory(p string) error { return os.Remove(d.abs(p)) }

func (d *DirRemote) Chtimes(p string, atime, mtime time.Time) error {
	return os.Chtimes(d.abs(p), atime, mtime)
}

func (d *DirRemote) Close() error { return nil }

// walkRemote lists every file and directory under root (excluding root
// itself), keyed by slash-separated path relative to root. A missing root is
// treated as empty: the first deploy to a fresh target starts from nothing.
func walkRemote(r Remote, root string) (files map[string]os.FileInfo, dirs map[string]struct{}, err error) {
	files = make(map[string]os.FileInfo)
	dirs = make(map[string]struct{})

	if _, statErr := r.Stat(root); statErr != nil {
		if isNotExist(statErr) {
			return files, dirs, nil
		}
		return nil, nil, statErr
	}

	var walk func(rel string) error
	walk = func(rel string) error {
		entries, err := r.ReadDir(path.Join(root, rel))
		if err != nil {
			return err
		}
		for _, info := range entries {
			childRel := path.Join(rel, info.Name())
			if info.IsDir() {
				dirs[childRel] = struct{}{}
				if err := walk(childRel); err != nil {
					return err
				}
			} else {
				files[childRel] = info
			}
		}
		return nil
	}
	if err := walk(""); err != nil {
		return nil, nil, err
	}
	return files, dirs, nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, fs.ErrNotExist)
}
