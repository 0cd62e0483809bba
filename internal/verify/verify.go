// Package verify checks the rendered site for broken internal links.
//
// It runs after a hugo build, over the publish directory, before anything is
// mirrored to the remote host. External URLs are listed but never fetched.
package verify

import (
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link is a reference extracted from a rendered HTML page.
type Link struct {
	URL       string
	Tag       string // a, img, script, link
	Attribute string // href or src
	Page      string // site-relative path of the page containing the link
	Internal  bool
}

// Issue is a broken internal reference.
type Issue struct {
	Page   string
	Target string
}

// Report summarizes one verification run.
type Report struct {
	Pages    int
	Links    int
	External []Link
	Broken   []Issue
}

// OK reports whether the site had no broken internal links.
func (r *Report) OK() bool { return len(r.Broken) == 0 }

// Site walks publishDir, extracts links from every HTML page, and resolves
// internal targets against the output tree.
func Site(publishDir string) (*Report, error) {
	report := &Report{}

	err := filepath.WalkDir(publishDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}

		rel, err := filepath.Rel(publishDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		file, err := os.Open(p)
		if err != nil {
			return err
		}
		links, perr := extractLinks(file, rel)
		_ = file.Close()
		if perr != nil {
			slog.Warn("Skipping unparsable HTML page", "page", rel, "error", perr)
			return nil
		}

		report.Pages++
		report.Links += len(links)
		for _, link := range links {
			if !link.Internal {
				report.External = append(report.External, link)
				continue
			}
			if !targetExists(publishDir, link) {
				report.Broken = append(report.Broken, Issue{Page: link.Page, Target: link.URL})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// extractLinks parses one HTML document and collects link-bearing attributes.
func extractLinks(r io.Reader, page string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if link, ok := linkFromElement(n, page); ok {
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func linkFromElement(n *html.Node, page string) (Link, bool) {
	var attrName string
	switch n.Data {
	case "a", "link":
		attrName = "href"
	case "img", "script":
		attrName = "src"
	default:
		return Link{}, false
	}

	raw := getAttr(n, attrName)
	if raw == "" {
		return Link{}, false
	}

	return Link{
		URL:       raw,
		Tag:       n.Data,
		Attribute: attrName,
		Page:      page,
		Internal:  isInternal(raw),
	}, true
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func isInternal(raw string) bool {
	if strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// targetExists resolves an internal link against the output tree, honoring
// directory URLs (trailing slash -> index.html).
func targetExists(publishDir string, link Link) bool {
	u, err := url.Parse(link.URL)
	if err != nil {
		return false
	}

	target := u.Path
	if target == "" {
		// Fragment-only or query-only reference within the page.
		return true
	}

	if !strings.HasPrefix(target, "/") {
		target = path.Join("/", path.Dir(link.Page), target)
	}
	target = strings.TrimPrefix(path.Clean(target), "/")

	candidates := []string{
		target,
		path.Join(target, "index.html"),
	}
	for _, c := range candidates {
		if c == "" || c == "." {
			return true
		}
		if info, err := os.Stat(filepath.Join(publishDir, filepath.FromSlash(c))); err == nil {
			if !info.IsDir() || c != target {
				return true
			}
			// A bare directory without index.html is not servable; the
			// index.html candidate handles the valid case.
		}
	}
	return false
}
