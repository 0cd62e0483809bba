package content

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/frontmatter"

	bperrors "git.home.luguber.info/inful/blogpub/internal/errors"
)

// ScanResult holds the outcome of a content tree scan.
//
// Parse failures do not abort the scan; they are collected so callers can
// report every broken file at once.
type ScanResult struct {
	Posts  []*Post
	Errors []error
}

// Drafts returns the posts marked draft: true.
func (r *ScanResult) Drafts() []*Post {
	var out []*Post
	for _, p := range r.Posts {
		if p.Draft {
			out = append(out, p)
		}
	}
	return out
}

// Future returns the posts dated after now.
func (r *ScanResult) Future(now time.Time) []*Post {
	var out []*Post
	for _, p := range r.Posts {
		if p.Future(now) {
			out = append(out, p)
		}
	}
	return out
}

// Scan walks contentDir and parses every Markdown file into a Post.
// Posts are returned sorted by date, newest first.
func Scan(contentDir string) (*ScanResult, error) {
	if _, err := os.Stat(contentDir); err != nil {
		return nil, bperrors.WorkspaceError("scan", err).WithContext("dir", contentDir)
	}

	result := &ScanResult{}

	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hugo ignores dot-directories; so do we.
			if strings.HasPrefix(d.Name(), ".") && path != contentDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		post, perr := Read(contentDir, path)
		if perr != nil {
			slog.Warn("Skipping unparsable content file", "path", path, "error", perr)
			result.Errors = append(result.Errors, perr)
			return nil
		}
		result.Posts = append(result.Posts, post)
		return nil
	})
	if err != nil {
		return nil, bperrors.WorkspaceError("scan", err).WithContext("dir", contentDir)
	}

	sort.SliceStable(result.Posts, func(i, j int) bool {
		return result.Posts[i].Date.After(result.Posts[j].Date)
	})

	return result, nil
}

// Read parses a single content file into a Post.
func Read(contentDir, path string) (*Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, bperrors.ContentParseError(path, err)
	}

	meta, body, format, _, err := frontmatter.Split(data)
	if err != nil {
		return nil, bperrors.ContentParseError(path, err)
	}

	fields := map[string]any{}
	if format != frontmatter.FormatNone {
		fields, err = frontmatter.Parse(meta, format)
		if err != nil {
			return nil, bperrors.ContentParseError(path, err)
		}
	}

	rel, err := filepath.Rel(contentDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	post, err := postFromFields(path, rel, format, fields, body)
	if err != nil {
		return nil, bperrors.ContentParseError(path, err)
	}
	return post, nil
}

func slugFromPath(relPath string) string {
	base := filepath.Base(relPath)
	base = strings.TrimSuffix(base, ".md")
	// Hugo page bundles: content/posts/my-post/index.md -> slug is the directory.
	if base == "index" || base == "_index" {
		if dir := filepath.Base(filepath.Dir(relPath)); dir != "." && dir != string(filepath.Separator) {
			return dir
		}
	}
	return base
}
