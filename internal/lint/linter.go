package lint

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/content"
	bperrors "git.home.luguber.info/inful/blogpub/internal/errors"
	"git.home.luguber.info/inful/blogpub/internal/markdown"
)

// maxDescriptionLength is the advisory limit for meta descriptions.
// Search engines truncate around 160 characters.
const maxDescriptionLength = 160

// Linter checks parsed posts against the site's content rules.
type Linter struct {
	contentDir     string
	requiredFields []string
	now            time.Time
}

// New creates a Linter for the given content directory.
func New(contentDir string, requiredFields []string) *Linter {
	return &Linter{
		contentDir:     contentDir,
		requiredFields: requiredFields,
		now:            time.Now(),
	}
}

// WithNow overrides the reference time used for future-date checks.
func (l *Linter) WithNow(now time.Time) *Linter {
	l.now = now
	return l
}

// Run lints every post in the scan result and returns the collected issues.
// Files that failed to parse during the scan are reported as errors too.
func (l *Linter) Run(scan *content.ScanResult) *Result {
	result := &Result{FilesTotal: len(scan.Posts) + len(scan.Errors)}

	for _, err := range scan.Errors {
		result.Issues = append(result.Issues, Issue{
			Path:     pathFromError(err),
			Severity: SeverityError,
			Rule:     "parse",
			Message:  err.Error(),
		})
	}

	for _, post := range scan.Posts {
		result.Issues = append(result.Issues, l.lintPost(post)...)
	}

	return result
}

func (l *Linter) lintPost(post *content.Post) []Issue {
	var issues []Issue

	add := func(sev Severity, rule, format string, args ...any) {
		issues = append(issues, Issue{
			Path:     post.RelativePath,
			Severity: sev,
			Rule:     rule,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, field := range l.requiredFields {
		if _, ok := post.Fields[field]; !ok {
			add(SeverityError, "required-fields", "missing required front matter field %q", field)
		}
	}

	if title, ok := post.Fields["title"]; ok {
		if s, isString := title.(string); !isString {
			add(SeverityError, "title", "title must be a string, got %T", title)
		} else if strings.TrimSpace(s) == "" {
			add(SeverityError, "title", "title is empty")
		}
	}

	if draft, ok := post.Fields["draft"]; ok {
		if _, isBool := draft.(bool); !isBool {
			add(SeverityWarning, "draft", "draft should be a boolean, got %T", draft)
		}
	}

	if tags, ok := post.Fields["tags"]; ok {
		if !isStringList(tags) {
			add(SeverityWarning, "tags", "tags should be a list of strings")
		}
	}

	if post.Description != "" && len(post.Description) > maxDescriptionLength {
		add(SeverityWarning, "description", "description is %d characters, over the %d character limit", len(post.Description), maxDescriptionLength)
	}

	if post.Future(l.now) {
		add(SeverityWarning, "future-date", "post is dated %s, in the future; it will be excluded from production builds", post.Date.Format("2006-01-02"))
	}

	for _, img := range post.Images {
		if isRemote(img) {
			continue
		}
		if !l.resourceExists(post, img) {
			add(SeverityError, "images", "front matter image %q does not exist", img)
		}
	}

	issues = append(issues, l.lintLinks(post)...)

	return issues
}

// lintLinks checks that relative link and image targets in the body resolve
// to files in the content tree.
func (l *Linter) lintLinks(post *content.Post) []Issue {
	links, err := markdown.ExtractLinks(post.Body)
	if err != nil {
		return []Issue{{
			Path:     post.RelativePath,
			Severity: SeverityWarning,
			Rule:     "links",
			Message:  fmt.Sprintf("could not parse body: %v", err),
		}}
	}

	var issues []Issue
	for _, link := range links {
		dest := link.Destination
		if dest == "" || isRemote(dest) || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
			continue
		}
		// Strip any fragment or query before checking the filesystem.
		if i := strings.IndexAny(dest, "#?"); i >= 0 {
			dest = dest[:i]
		}
		if dest == "" {
			continue
		}
		if !l.resourceExists(post, dest) {
			rule := "links"
			if link.Kind == markdown.LinkKindImage {
				rule = "images"
			}
			issues = append(issues, Issue{
				Path:     post.RelativePath,
				Severity: SeverityError,
				Rule:     rule,
				Message:  fmt.Sprintf("relative target %q does not exist", link.Destination),
			})
		}
	}
	return issues
}

// resourceExists checks a relative path against the post's directory.
func (l *Linter) resourceExists(post *content.Post, rel string) bool {
	dir := filepath.Dir(filepath.Join(l.contentDir, filepath.FromSlash(post.RelativePath)))
	p := filepath.Join(dir, filepath.FromSlash(rel))
	_, err := os.Stat(p)
	return err == nil
}

// isRemote reports whether a destination has a URL scheme or is
// protocol-relative, so no filesystem check applies.
func isRemote(dest string) bool {
	if strings.HasPrefix(dest, "//") {
		return true
	}
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.Scheme != ""
}

func isStringList(v any) bool {
	switch vv := v.(type) {
	case []string:
		return true
	case []any:
		for _, item := range vv {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// pathFromError pulls the file path out of a scan error's context, if present.
func pathFromError(err error) string {
	var pe *bperrors.PublishError
	if stderrors.As(err, &pe) {
		if p, ok := pe.Context["path"].(string); ok {
			return p
		}
	}
	return ""
}
