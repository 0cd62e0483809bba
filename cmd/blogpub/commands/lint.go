package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/content"
	"git.home.luguber.info/inful/blogpub/internal/lint"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Quiet bool `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
}

func (l *LintCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	result, err := runLint(cfg)
	if err != nil {
		return err
	}

	for _, issue := range result.Issues {
		if l.Quiet && issue.Severity != lint.SeverityError {
			continue
		}
		fmt.Printf("%s: %s: [%s] %s\n", issue.Severity, issue.Path, issue.Rule, issue.Message)
	}

	errors, warnings := result.Counts()
	fmt.Printf("%d file(s) checked: %d error(s), %d warning(s)\n", result.FilesTotal, errors, warnings)

	if code := lintExitCode(result); code != 0 {
		os.Exit(code)
	}
	return nil
}

// lintExitCode maps a lint result to the process exit status. Warnings are
// reported but never fail the run; only errors do.
func lintExitCode(result *lint.Result) int {
	if result.HasErrors() {
		return 2
	}
	return 0
}

// runLint scans the content tree and lints it. Shared with the deploy
// command's preflight check.
func runLint(cfg *config.Config) (*lint.Result, error) {
	scan, err := content.Scan(cfg.Site.ContentDir)
	if err != nil {
		return nil, err
	}
	return lint.New(cfg.Site.ContentDir, cfg.Content.RequiredFields).Run(scan), nil
}
