package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/history"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct {
	Limit int `short:"n" default:"10" help:"Number of deploys to show"`
}

func (s *StatusCmd) Run(_ *Global, root *CLI) error {
	path, err := historyPath(root)
	if err != nil {
		return err
	}
	store, err := history.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(context.Background(), s.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No deploys recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tOUTCOME\tTARGET\tCOMMIT\tUPLOADED\tDELETED\tBYTES\tDURATION")
	for _, r := range records {
		commit := r.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if r.Dirty {
			commit += "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s:%s\t%s\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Outcome,
			r.Host, r.RemoteDir,
			commit,
			r.Uploaded, r.Deleted,
			humanBytes(r.Bytes),
			r.Duration().Round(time.Millisecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if last := records[0]; last.Error != "" {
		fmt.Printf("\nLast error: %s\n", last.Error)
	}
	return nil
}
