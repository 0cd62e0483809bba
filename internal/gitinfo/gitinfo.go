// Package gitinfo reads the blog repository's git state for deploy records.
package gitinfo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Info describes the repository state at deploy time.
type Info struct {
	Commit string
	Branch string
	Dirty  bool
}

// ErrNotARepository indicates the site directory is not inside a git repository.
var ErrNotARepository = errors.New("not a git repository")

// Describe resolves HEAD and worktree cleanliness for the repository
// containing dir.
func Describe(dir string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotARepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	info := &Info{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("read worktree status: %w", err)
	}
	info.Dirty = !status.IsClean()

	return info, nil
}

// Short returns the abbreviated commit hash.
func (i *Info) Short() string {
	if len(i.Commit) < 7 {
		return i.Commit
	}
	return i.Commit[:7]
}
