package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func commitFile(t *testing.T, dir string, repo *git.Repository, name, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestDescribe_CleanRepository(t *testing.T) {
	dir, repo := initRepo(t)
	hash := commitFile(t, dir, repo, "post.md", "content")

	info, err := Describe(dir)
	require.NoError(t, err)
	require.Equal(t, hash, info.Commit)
	require.False(t, info.Dirty)
	require.Equal(t, hash[:7], info.Short())
}

func TestDescribe_DirtyWorktree(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, dir, repo, "post.md", "content")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.md"), []byte("edited"), 0o644))

	info, err := Describe(dir)
	require.NoError(t, err)
	require.True(t, info.Dirty)
}

func TestDescribe_SubdirectoryFindsRepository(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, dir, repo, "post.md", "content")
	sub := filepath.Join(dir, "content", "posts")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	info, err := Describe(sub)
	require.NoError(t, err)
	require.NotEmpty(t, info.Commit)
}

func TestDescribe_NotARepository(t *testing.T) {
	_, err := Describe(t.TempDir())
	require.ErrorIs(t, err, ErrNotARepository)
}
