package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/hugo"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory for the rendered site (defaults to site.publish_dir)"`
	Drafts      bool   `short:"D" help:"Include draft posts"`
	Environment string `short:"e" help:"Hugo deployment environment (defaults to site.environment)"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dest := b.Output
	if dest == "" {
		dest = cfg.Site.PublishDir
	}
	env := b.Environment
	if env == "" {
		env = cfg.Site.Environment
	}

	runner := &hugo.BinaryRunner{}
	res, err := runner.Build(ctx, hugo.BuildOptions{
		SiteDir:     ".",
		Destination: dest,
		Environment: env,
		BuildDrafts: b.Drafts,
		CleanDest:   true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Built site into %s (environment %s) in %s\n", dest, env, res.Duration.Round(time.Millisecond))
	return nil
}
