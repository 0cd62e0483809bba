package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/deploy"
	"git.home.luguber.info/inful/blogpub/internal/gitinfo"
	"git.home.luguber.info/inful/blogpub/internal/history"
	"git.home.luguber.info/inful/blogpub/internal/hugo"
	"git.home.luguber.info/inful/blogpub/internal/lint"
	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
	"git.home.luguber.info/inful/blogpub/internal/retry"
	"git.home.luguber.info/inful/blogpub/internal/verify"
	"git.home.luguber.info/inful/blogpub/internal/workspace"
)

// DeployCmd implements the 'deploy' command: build the site in a staging
// directory, verify it, and mirror it to the remote host over SFTP.
type DeployCmd struct {
	Env        string `name:"env" help:"Override the deployment environment for this run"`
	DryRun     bool   `help:"Compute and print the transfer plan without touching the remote"`
	AllowDirty bool   `help:"Deploy even when the working tree has uncommitted changes"`
	SkipVerify bool   `help:"Skip the rendered-site link check"`
	SkipLint   bool   `help:"Skip the content preflight check"`
	Force      bool   `help:"Deploy despite lint errors or broken links"`
}

func (d *DeployCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if d.Env != "" {
		cfg.Site.Environment = d.Env
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	info := describeRepo(d.AllowDirty)
	if info != nil && info.Dirty && !d.AllowDirty {
		return fmt.Errorf("working tree has uncommitted changes; commit them or pass --allow-dirty")
	}

	if !d.SkipLint {
		result, lintErr := runLint(cfg)
		if lintErr != nil {
			return lintErr
		}
		reportLintIssues(result)
		if result.HasErrors() && !d.Force {
			return fmt.Errorf("content has lint errors; fix them or pass --force")
		}
	}

	opts := deployOptions{dryRun: d.DryRun, skipVerify: d.SkipVerify, force: d.Force, gitInfo: info}
	res, rec, err := runDeploy(ctx, cfg, opts, metrics.NoopRecorder{}, &hugo.BinaryRunner{})
	if rec != nil {
		if herr := appendHistory(ctx, root, *rec); herr != nil {
			slog.Warn("Could not record deploy history", logfields.Error(herr))
		}
	}
	if err != nil {
		return err
	}
	if d.DryRun || res == nil {
		return nil
	}

	fmt.Println(confirmationLine(cfg, res))
	if res.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to transfer", res.Failed)
	}
	return nil
}

// deployOptions carries per-run switches shared between the deploy command
// and watch mode's scheduled deploys.
type deployOptions struct {
	dryRun     bool
	skipVerify bool
	force      bool
	gitInfo    *gitinfo.Info
}

// runDeploy builds the site into an ephemeral staging directory, verifies it,
// and mirrors it to the configured remote. The returned history record is
// non-nil whenever a run progressed far enough to be worth recording.
func runDeploy(ctx context.Context, cfg *config.Config, opts deployOptions, recorder metrics.Recorder, runner hugo.Runner) (*deploy.Result, *history.Record, error) {
	started := time.Now()
	rec := &history.Record{
		ID:          uuid.NewString(),
		StartedAt:   started,
		Environment: cfg.Site.Environment,
		Host:        cfg.Deploy.Host,
		RemoteDir:   cfg.Deploy.RemoteDir,
	}
	if opts.gitInfo != nil {
		rec.Commit = opts.gitInfo.Commit
		rec.Dirty = opts.gitInfo.Dirty
	}

	slog.Info("Starting deploy",
		logfields.DeployID(rec.ID),
		logfields.Environment(rec.Environment),
		logfields.Host(rec.Host),
		logfields.RemoteDir(rec.RemoteDir))

	fail := func(err error) (*deploy.Result, *history.Record, error) {
		rec.FinishedAt = time.Now()
		rec.Outcome = history.OutcomeFailed
		rec.Error = err.Error()
		recorder.IncDeployOutcome(metrics.OutcomeFailed)
		return nil, rec, err
	}

	staging := workspace.New("")
	if err := staging.Create(); err != nil {
		return fail(err)
	}
	defer func() {
		if err := staging.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup staging directory", logfields.Error(err))
		}
	}()

	buildStart := time.Now()
	if _, err := runner.Build(ctx, hugo.BuildOptions{
		SiteDir:     ".",
		Destination: staging.Path(),
		Environment: cfg.Site.Environment,
		BaseURL:     cfg.Site.BaseURL,
		CleanDest:   true,
	}); err != nil {
		return fail(err)
	}
	recorder.ObserveBuildDuration(time.Since(buildStart))

	if !opts.skipVerify {
		report, err := verify.Site(staging.Path())
		if err != nil {
			return fail(err)
		}
		slog.Info("Verified rendered site",
			"pages", report.Pages, "links", report.Links, "broken", len(report.Broken))
		if !report.OK() {
			for _, issue := range report.Broken {
				slog.Error("Broken internal link", "page", issue.Page, "target", issue.Target)
			}
			if !opts.force {
				return fail(fmt.Errorf("rendered site has %d broken internal link(s)", len(report.Broken)))
			}
		}
	}

	client, err := deploy.Connect(&cfg.Deploy)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = client.Close() }()

	mirror := deploy.NewMirror(staging.Path(), client, cfg.Deploy.RemoteDir,
		cfg.Deploy.Concurrency, retry.FromConfig(cfg.Deploy.Retry)).WithRecorder(recorder)

	plan, err := mirror.Plan(cfg.Deploy.DeleteEnabled())
	if err != nil {
		return fail(err)
	}

	if opts.dryRun {
		printPlan(plan)
		return nil, nil, nil
	}

	if plan.Empty() {
		slog.Info("Remote is already up to date", "skipped", plan.Skipped)
	}

	res, err := mirror.Apply(ctx, plan)
	rec.FinishedAt = time.Now()
	if res != nil {
		rec.Uploaded = res.Uploaded
		rec.Deleted = res.Deleted
		rec.Skipped = res.Skipped
		rec.Failed = res.Failed
		rec.Bytes = res.Bytes
		recorder.AddBytesTransferred(res.Bytes)
	}

	switch {
	case errors.Is(err, context.Canceled):
		rec.Outcome = history.OutcomeCanceled
		rec.Error = err.Error()
		recorder.IncDeployOutcome(metrics.OutcomeCanceled)
		return res, rec, err
	case err != nil:
		rec.Outcome = history.OutcomeFailed
		rec.Error = err.Error()
		recorder.IncDeployOutcome(metrics.OutcomeFailed)
		return res, rec, err
	case res.Failed > 0:
		rec.Outcome = history.OutcomePartial
		recorder.IncDeployOutcome(metrics.OutcomePartial)
	default:
		rec.Outcome = history.OutcomeSuccess
		recorder.IncDeployOutcome(metrics.OutcomeSuccess)
	}
	return res, rec, nil
}

// describeRepo collects git metadata for the deploy record. A blog outside
// version control is fine; everything else logs and proceeds.
func describeRepo(allowDirty bool) *gitinfo.Info {
	info, err := gitinfo.Describe(".")
	if err != nil {
		if errors.Is(err, gitinfo.ErrNotARepository) {
			slog.Debug("Not a git repository; skipping commit tracking")
		} else {
			slog.Warn("Could not read git metadata", logfields.Error(err))
		}
		return nil
	}
	if info.Dirty && allowDirty {
		slog.Warn("Deploying with uncommitted changes", "commit", info.Short())
	}
	return info
}

func reportLintIssues(result *lint.Result) {
	for _, issue := range result.Issues {
		switch issue.Severity {
		case lint.SeverityError:
			slog.Error("Lint issue", logfields.Path(issue.Path), "rule", issue.Rule, "message", issue.Message)
		default:
			slog.Warn("Lint issue", logfields.Path(issue.Path), "rule", issue.Rule, "message", issue.Message)
		}
	}
}

// printPlan renders a dry-run transfer plan to stdout.
func printPlan(plan *deploy.Plan) {
	for _, dir := range plan.Dirs {
		fmt.Printf("mkdir   %s/\n", dir)
	}
	for _, e := range plan.Transfers {
		fmt.Printf("%-7s %s (%s)\n", string(e.Action), e.RelPath, humanBytes(e.Size))
	}
	for _, e := range plan.Deletes {
		fmt.Printf("delete  %s\n", e.RelPath)
	}
	for _, dir := range plan.DeleteDirs {
		fmt.Printf("rmdir   %s/\n", dir)
	}
	fmt.Printf("\nPlan: %d transfer(s), %d delete(s), %d unchanged, %s to send\n",
		len(plan.Transfers), len(plan.Deletes), plan.Skipped, humanBytes(plan.TotalBytes))
}

// confirmationLine is the single human-readable summary printed after a
// completed deploy.
func confirmationLine(cfg *config.Config, res *deploy.Result) string {
	line := fmt.Sprintf("Deployed %s to %s@%s:%s: %d uploaded, %d deleted, %d unchanged, %s in %s",
		cfg.Site.Environment, cfg.Deploy.User, cfg.Deploy.Host, cfg.Deploy.RemoteDir,
		res.Uploaded, res.Deleted, res.Skipped, humanBytes(res.Bytes), res.Duration.Round(time.Millisecond))
	if res.Failed > 0 {
		line += fmt.Sprintf(" (%d FAILED)", res.Failed)
	}
	return line
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// appendHistory persists a deploy record, opening the store for the duration
// of the write.
func appendHistory(ctx context.Context, root *CLI, rec history.Record) error {
	path, err := historyPath(root)
	if err != nil {
		return err
	}
	store, err := history.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Append(ctx, rec)
}
