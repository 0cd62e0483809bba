package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/content"
)

// NewCmd implements the 'new' command.
type NewCmd struct {
	Title string   `arg:"" help:"Title of the new post"`
	Tags  []string `short:"t" help:"Tags for the new post"`
}

func (n *NewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	path, err := content.NewPost(cfg.Site.ContentDir, n.Title, n.Tags, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Created %s (draft)\n", path)
	return nil
}
