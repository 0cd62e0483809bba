package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogpub/cmd/blogpub/commands"
	"git.home.luguber.info/inful/blogpub/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("blogpub"),
		kong.Description("Build a Hugo blog and mirror it to a remote host over SFTP."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
		kong.Bind(&cli),
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()})
	ctx.FatalIfErrorf(err)
}
