package commands

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/deploy"
	"git.home.luguber.info/inful/blogpub/internal/lint"
)

func parseArgs(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("blogpub"),
		kong.Vars{"version": "test"},
		kong.Bind(cli),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, ctx
}

func TestCLIGrammar(t *testing.T) {
	tests := []struct {
		args    []string
		command string
	}{
		{[]string{"init"}, "init"},
		{[]string{"new", "My First Post"}, "new <title>"},
		{[]string{"list", "--drafts"}, "list"},
		{[]string{"list", "--future"}, "list"},
		{[]string{"lint", "-q"}, "lint"},
		{[]string{"build", "-D", "-o", "out"}, "build"},
		{[]string{"deploy", "--dry-run", "--allow-dirty"}, "deploy"},
		{[]string{"deploy", "--env", "staging"}, "deploy"},
		{[]string{"--log-format", "json", "list"}, "list"},
		{[]string{"status", "-n", "5"}, "status"},
		{[]string{"watch", "--no-drafts"}, "watch"},
	}

	for _, tc := range tests {
		_, ctx := parseArgs(t, tc.args...)
		require.Equal(t, tc.command, ctx.Command())
	}
}

func TestCLIGlobalFlags(t *testing.T) {
	cli, _ := parseArgs(t, "-c", "site/blogpub.yaml", "-v", "list")
	require.Equal(t, "site/blogpub.yaml", cli.Config)
	require.True(t, cli.Verbose)
}

func TestDeployFlags(t *testing.T) {
	cli, _ := parseArgs(t, "deploy", "--dry-run", "--skip-verify", "--skip-lint", "--force", "--env", "staging")
	require.True(t, cli.Deploy.DryRun)
	require.True(t, cli.Deploy.SkipVerify)
	require.True(t, cli.Deploy.SkipLint)
	require.True(t, cli.Deploy.Force)
	require.False(t, cli.Deploy.AllowDirty)
	require.Equal(t, "staging", cli.Deploy.Env)
}

func TestResolveLogFormat_FlagWinsOverConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logging.Format = config.LogFormatText

	require.Equal(t, config.LogFormatText, resolveLogFormat(cfg, &CLI{}))
	require.Equal(t, config.LogFormatJSON, resolveLogFormat(cfg, &CLI{LogFormat: "json"}))
}

func TestLogHandler_FormatSelectsHandler(t *testing.T) {
	h := logHandler(slog.LevelInfo, config.LogFormatJSON)
	_, ok := h.(*slog.JSONHandler)
	require.True(t, ok)

	h = logHandler(slog.LevelInfo, config.LogFormatText)
	_, ok = h.(*slog.TextHandler)
	require.True(t, ok)
}

func TestLintExitCode_WarningsDoNotFail(t *testing.T) {
	warningsOnly := &lint.Result{Issues: []lint.Issue{
		{Path: "a.md", Severity: lint.SeverityWarning, Rule: "future-date", Message: "dated in the future"},
	}}
	require.Equal(t, 0, lintExitCode(warningsOnly))

	withErrors := &lint.Result{Issues: []lint.Issue{
		{Path: "a.md", Severity: lint.SeverityError, Rule: "required-fields", Message: "missing title"},
	}}
	require.Equal(t, 2, lintExitCode(withErrors))

	require.Equal(t, 0, lintExitCode(&lint.Result{}))
}

func TestPreviewWorkspace_IsPublishDirAndSurvivesCleanup(t *testing.T) {
	cfg := &config.Config{}
	cfg.Site.PublishDir = filepath.Join(t.TempDir(), "public")

	ws := previewWorkspace(cfg)
	require.NoError(t, ws.Create())
	require.Equal(t, cfg.Site.PublishDir, ws.Path())
	require.DirExists(t, ws.Path())

	require.NoError(t, ws.Cleanup())
	require.DirExists(t, ws.Path())
}

func TestHumanBytes(t *testing.T) {
	require.Equal(t, "0 B", humanBytes(0))
	require.Equal(t, "512 B", humanBytes(512))
	require.Equal(t, "1.0 KiB", humanBytes(1024))
	require.Equal(t, "1.5 MiB", humanBytes(1024*1024+512*1024))
	require.Equal(t, "2.0 GiB", humanBytes(2*1024*1024*1024))
}

func TestConfirmationLine(t *testing.T) {
	cfg := &config.Config{
		Site: config.SiteConfig{Environment: "production"},
		Deploy: config.DeployConfig{
			User:      "deploy",
			Host:      "web.example.com",
			RemoteDir: "/var/www/blog",
		},
	}
	res := &deploy.Result{
		Uploaded: 12,
		Deleted:  3,
		Skipped:  40,
		Bytes:    2048,
		Duration: 1500 * time.Millisecond,
	}

	line := confirmationLine(cfg, res)
	require.Equal(t, "Deployed production to deploy@web.example.com:/var/www/blog: 12 uploaded, 3 deleted, 40 unchanged, 2.0 KiB in 1.5s", line)

	res.Failed = 2
	require.Contains(t, confirmationLine(cfg, res), "(2 FAILED)")
}

func TestStateDirNextToConfig(t *testing.T) {
	cli := &CLI{Config: "/srv/blog/blogpub.yaml"}
	require.Equal(t, "/srv/blog/.blogpub", stateDir(cli))

	cli = &CLI{Config: "blogpub.yaml"}
	require.Equal(t, ".blogpub", stateDir(cli))
}
