package content

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/frontmatter"
)

// NewPost scaffolds a draft post in contentDir and returns its path.
//
// The filename is the slugified title; the front matter carries the fields
// the blog's articles use (title, date, draft, tags, description, images).
func NewPost(contentDir, title string, tags []string, now time.Time) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q produces an empty slug", title)
	}

	path := filepath.Join(contentDir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("post already exists: %s", path)
	}

	fields := map[string]any{
		"title":       title,
		"date":        now.Format(time.RFC3339),
		"draft":       true,
		"description": "",
	}
	if len(tags) > 0 {
		fields["tags"] = tags
	}

	meta, err := frontmatter.SerializeYAML(fields, frontmatter.Style{Newline: "\n"})
	if err != nil {
		return "", fmt.Errorf("serialize front matter: %w", err)
	}

	doc := frontmatter.Join(meta, []byte("\n"), frontmatter.FormatYAML, frontmatter.Style{Newline: "\n"})

	if err := os.MkdirAll(contentDir, 0o750); err != nil {
		return "", fmt.Errorf("create content directory: %w", err)
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", fmt.Errorf("write post: %w", err)
	}

	return path, nil
}
