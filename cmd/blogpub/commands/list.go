package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/content"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Drafts bool `short:"d" help:"Only show drafts"`
	Future bool `short:"f" help:"Only show future-dated posts"`
}

func (l *ListCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	scan, err := content.Scan(cfg.Site.ContentDir)
	if err != nil {
		return err
	}

	posts := scan.Posts
	switch {
	case l.Drafts:
		posts = scan.Drafts()
	case l.Future:
		posts = scan.Future(time.Now())
	}

	if len(posts) == 0 {
		fmt.Println("No posts found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSLUG\tTITLE\tSTATUS\tTAGS")
	for _, p := range posts {
		date := ""
		if !p.Date.IsZero() {
			date = p.Date.Format("2006-01-02")
		}
		status := "published"
		if p.Draft {
			status = "draft"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", date, p.Slug(), p.Title, status, strings.Join(p.Tags, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(scan.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d file(s) could not be parsed; run 'blogpub lint' for details.\n", len(scan.Errors))
	}
	return nil
}
