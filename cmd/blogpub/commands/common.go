package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogpub/internal/config"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"blogpub.yaml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `help:"Log output format, overrides the configuration file" enum:"text,json," default:""`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
	New    NewCmd    `cmd:"" help:"Scaffold a new draft post"`
	List   ListCmd   `cmd:"" help:"List posts in the content directory"`
	Lint   LintCmd   `cmd:"" help:"Check content front matter and links"`
	Build  BuildCmd  `cmd:"" help:"Build the site with hugo"`
	Deploy DeployCmd `cmd:"" help:"Build and mirror the site to the remote host"`
	Status StatusCmd `cmd:"" help:"Show recent deploy history"`
	Watch  WatchCmd  `cmd:"" help:"Rebuild on content changes, optionally deploy on a schedule"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(logHandler(level, config.LogFormat(c.LogFormat))))
	return nil
}

// loadConfig loads and defaults the configuration referenced by the root
// flag, then reconfigures logging from it. -v wins over logging.level and
// --log-format wins over logging.format.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(cfg, root)
	return cfg, nil
}

func configureLogging(cfg *config.Config, root *CLI) {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if root.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(logHandler(level, resolveLogFormat(cfg, root))))
}

// resolveLogFormat picks the log output format: the --log-format flag when
// given, the configuration file otherwise.
func resolveLogFormat(cfg *config.Config, root *CLI) config.LogFormat {
	if root.LogFormat != "" {
		return config.LogFormat(root.LogFormat)
	}
	return cfg.Logging.Format
}

func logHandler(level slog.Level, format config.LogFormat) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// stateDir is where blogpub keeps local state such as deploy history,
// resolved next to the configuration file.
func stateDir(root *CLI) string {
	return filepath.Join(filepath.Dir(root.Config), ".blogpub")
}

// historyPath returns the deploy history database path, creating the state
// directory if needed.
func historyPath(root *CLI) (string, error) {
	dir := stateDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
