// Package content models the blog's Markdown posts and their front matter.
package content

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/frontmatter"
)

// Post is a single Markdown article parsed from the content directory.
type Post struct {
	Path         string // absolute path on disk
	RelativePath string // relative to the content directory

	Title       string
	Date        time.Time
	Draft       bool
	Tags        []string
	Description string
	Images      []string

	Format frontmatter.Format
	Fields map[string]any // full front matter, including fields not modeled above
	Body   []byte
}

// Slug returns the post's URL slug, derived from its filename.
func (p *Post) Slug() string {
	return slugFromPath(p.RelativePath)
}

// Future reports whether the post is dated after now.
// Hugo excludes such posts from production builds, so deploys flag them.
func (p *Post) Future(now time.Time) bool {
	return !p.Date.IsZero() && p.Date.After(now)
}

// dateLayouts are the front matter date formats accepted, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a front matter date value (string or time.Time).
func ParseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, d); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date format: %q", d)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("date has unexpected type %T", v)
	}
}

// postFromFields builds a Post from parsed front matter fields.
func postFromFields(path, relPath string, format frontmatter.Format, fields map[string]any, body []byte) (*Post, error) {
	p := &Post{
		Path:         path,
		RelativePath: relPath,
		Format:       format,
		Fields:       fields,
		Body:         body,
	}

	if title, ok := fields["title"].(string); ok {
		p.Title = title
	}
	if draft, ok := fields["draft"].(bool); ok {
		p.Draft = draft
	}
	if desc, ok := fields["description"].(string); ok {
		p.Description = desc
	}

	if raw, ok := fields["date"]; ok {
		date, err := ParseDate(raw)
		if err != nil {
			return nil, err
		}
		p.Date = date
	}

	p.Tags = stringSlice(fields["tags"])
	p.Images = stringSlice(fields["images"])
	if img, ok := fields["image"].(string); ok && img != "" {
		p.Images = append(p.Images, img)
	}

	return p, nil
}

// stringSlice coerces a front matter list value into []string, skipping non-strings.
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}
