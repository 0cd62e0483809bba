package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogpub/internal/frontmatter"
)

func writePost(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScan_ParsesPostsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "old.md", "---\ntitle: Old\ndate: 2024-01-01\n---\nOld body\n")
	writePost(t, dir, "new.md", "---\ntitle: New\ndate: 2025-06-15\ntags: [go, hugo]\n---\nNew body\n")

	result, err := Scan(dir)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Posts, 2)

	require.Equal(t, "New", result.Posts[0].Title)
	require.Equal(t, "Old", result.Posts[1].Title)
	require.Equal(t, []string{"go", "hugo"}, result.Posts[0].Tags)
}

func TestScan_CollectsParseErrorsWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "good.md", "---\ntitle: Good\ndate: 2024-01-01\n---\nBody\n")
	writePost(t, dir, "broken.md", "---\ntitle: Broken\nno closing delimiter\n")

	result, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
	require.Len(t, result.Errors, 1)
}

func TestScan_IgnoresNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "notes.txt", "not a post")
	writePost(t, dir, "post.md", "---\ntitle: P\ndate: 2024-01-01\n---\n")

	result, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
}

func TestScan_MissingDirectory_ReturnsError(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestRead_ExtractsModeledFields(t *testing.T) {
	dir := t.TempDir()
	doc := "---\n" +
		"title: Clean Architecture in Practice\n" +
		"date: 2025-03-10T09:00:00Z\n" +
		"draft: true\n" +
		"tags: [architecture, flutter]\n" +
		"description: Layering conventions for mobile apps\n" +
		"images: [cover.png]\n" +
		"image: social.png\n" +
		"---\nBody text\n"
	path := writePost(t, dir, "clean-architecture.md", doc)

	post, err := Read(dir, path)
	require.NoError(t, err)

	require.Equal(t, "Clean Architecture in Practice", post.Title)
	require.True(t, post.Draft)
	require.Equal(t, []string{"architecture", "flutter"}, post.Tags)
	require.Equal(t, "Layering conventions for mobile apps", post.Description)
	require.Equal(t, []string{"cover.png", "social.png"}, post.Images)
	require.Equal(t, frontmatter.FormatYAML, post.Format)
	require.Equal(t, "clean-architecture", post.Slug())
	require.Equal(t, []byte("Body text\n"), post.Body)
}

func TestRead_TOMLFrontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writePost(t, dir, "toml-post.md", "+++\ntitle = \"TOML Post\"\ndraft = false\n+++\nBody\n")

	post, err := Read(dir, path)
	require.NoError(t, err)
	require.Equal(t, "TOML Post", post.Title)
	require.Equal(t, frontmatter.FormatTOML, post.Format)
}

func TestPost_SlugForPageBundle(t *testing.T) {
	p := &Post{RelativePath: filepath.Join("my-bundle", "index.md")}
	require.Equal(t, "my-bundle", p.Slug())
}

func TestScanResult_Future(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "past.md", "---\ntitle: Past\ndate: 2020-01-01\n---\n")
	writePost(t, dir, "scheduled.md", "---\ntitle: Scheduled\ndate: 2030-01-01\n---\n")

	result, err := Scan(dir)
	require.NoError(t, err)

	future := result.Future(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, future, 1)
	require.Equal(t, "Scheduled", future[0].Title)
}

func TestPost_Future(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := &Post{Date: now.Add(24 * time.Hour)}
	past := &Post{Date: now.Add(-24 * time.Hour)}
	undated := &Post{}

	require.True(t, future.Future(now))
	require.False(t, past.Future(now))
	require.False(t, undated.Future(now))
}

func TestParseDate_Formats(t *testing.T) {
	for _, raw := range []string{"2025-03-10", "2025-03-10T09:00:00Z", "2025-03-10 09:00:00"} {
		ts, err := ParseDate(raw)
		require.NoError(t, err, raw)
		require.Equal(t, 2025, ts.Year())
	}

	_, err := ParseDate("10/03/2025")
	require.Error(t, err)

	ts, err := ParseDate(nil)
	require.NoError(t, err)
	require.True(t, ts.IsZero())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":             "hello-world",
		"Clean Architecture 101":  "clean-architecture-101",
		"  Spaces   everywhere  ": "spaces-everywhere",
		"Économie à gogo":         "economie-a-gogo",
		"C'est l'été!":            "c-est-l-ete",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), in)
	}
}

func TestNewPost_ScaffoldsDraft(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	path, err := NewPost(dir, "My First Post", []string{"go"}, now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "my-first-post.md"), path)

	post, err := Read(dir, path)
	require.NoError(t, err)
	require.Equal(t, "My First Post", post.Title)
	require.True(t, post.Draft)
	require.Equal(t, []string{"go"}, post.Tags)
	require.Equal(t, now, post.Date.UTC())
}

func TestNewPost_RefusesExisting(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	_, err := NewPost(dir, "Duplicate", nil, now)
	require.NoError(t, err)
	_, err = NewPost(dir, "Duplicate", nil, now)
	require.Error(t, err)
}

func TestNewPost_EmptySlug_ReturnsError(t *testing.T) {
	_, err := NewPost(t.TempDir(), "!!!", nil, time.Now())
	require.Error(t, err)
}
