package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSiteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSite_AllLinksResolve(t *testing.T) {
	site := t.TempDir()
	writeSiteFile(t, site, "index.html",
		`<html><body><a href="/posts/first/">first</a><img src="/images/cover.png"></body></html>`)
	writeSiteFile(t, site, "posts/first/index.html",
		`<html><body><a href="../../">home</a></body></html>`)
	writeSiteFile(t, site, "images/cover.png", "png")

	report, err := Site(site)
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Equal(t, 2, report.Pages)
}

func TestSite_ReportsBrokenInternalLinks(t *testing.T) {
	site := t.TempDir()
	writeSiteFile(t, site, "index.html",
		`<html><body><a href="/posts/missing/">gone</a></body></html>`)

	report, err := Site(site)
	require.NoError(t, err)
	require.False(t, report.OK())
	require.Len(t, report.Broken, 1)
	require.Equal(t, "index.html", report.Broken[0].Page)
	require.Equal(t, "/posts/missing/", report.Broken[0].Target)
}

func TestSite_ExternalLinksAreListedNotChecked(t *testing.T) {
	site := t.TempDir()
	writeSiteFile(t, site, "index.html",
		`<html><body><a href="https://example.com/">ext</a><a href="mailto:a@b.c">mail</a></body></html>`)

	report, err := Site(site)
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Len(t, report.External, 2)
}

func TestSite_FragmentOnlyLinksAreIgnored(t *testing.T) {
	site := t.TempDir()
	writeSiteFile(t, site, "index.html",
		`<html><body><a href="#section">jump</a></body></html>`)

	report, err := Site(site)
	require.NoError(t, err)
	require.True(t, report.OK())
}

func TestSite_RelativeLinksResolveAgainstPage(t *testing.T) {
	site := t.TempDir()
	writeSiteFile(t, site, "posts/a/index.html",
		`<html><body><img src="cover.png"><a href="../b/">next</a></body></html>`)
	writeSiteFile(t, site, "posts/a/cover.png", "png")

	report, err := Site(site)
	require.NoError(t, err)
	require.Len(t, report.Broken, 1)
	require.Equal(t, "../b/", report.Broken[0].Target)
}

func TestSite_DirectoryWithoutIndexIsBroken(t *testing.T) {
	site := t.TempDir()
	writeSiteFile(t, site, "index.html",
		`<html><body><a href="/empty/">dir</a></body></html>`)
	require.NoError(t, os.MkdirAll(filepath.Join(site, "empty"), 0o750))

	report, err := Site(site)
	require.NoError(t, err)
	require.Len(t, report.Broken, 1)
}
