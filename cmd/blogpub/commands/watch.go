package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/history"
	"git.home.luguber.info/inful/blogpub/internal/hugo"
	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
	"git.home.luguber.info/inful/blogpub/internal/watch"
	"git.home.luguber.info/inful/blogpub/internal/workspace"
)

// WatchCmd implements the 'watch' command: rebuild the local site whenever
// content changes, and optionally deploy on a fixed interval.
type WatchCmd struct {
	Drafts bool `short:"D" default:"true" negatable:"" help:"Include draft posts in local rebuilds"`
}

func (wc *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
	tracker := watch.NewStatusTracker()
	runner := &hugo.BinaryRunner{}

	preview := previewWorkspace(cfg)
	if err := preview.Create(); err != nil {
		return err
	}

	rebuild := func(buildCtx context.Context) {
		start := time.Now()
		_, berr := runner.Build(buildCtx, hugo.BuildOptions{
			SiteDir:     ".",
			Destination: preview.Path(),
			BuildDrafts: wc.Drafts,
			CleanDest:   true,
			MinifyOff:   true,
		})
		if berr != nil {
			slog.Error("Rebuild failed", logfields.Error(berr))
			return
		}
		recorder.ObserveBuildDuration(time.Since(start))
		tracker.RecordBuild()
		slog.Info("Site rebuilt", "output", preview.Path(), "duration", time.Since(start).Round(time.Millisecond))
	}

	watcher, err := watch.NewContentWatcher(cfg.Site.ContentDir, cfg.Watch.Debounce, rebuild)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	// Render once up front so the output directory is fresh.
	rebuild(ctx)

	var scheduler *watch.Scheduler
	if cfg.Watch.DeployInterval > 0 {
		if err := cfg.Validate(); err != nil {
			return err
		}
		scheduler, err = watch.NewScheduler()
		if err != nil {
			return err
		}
		if _, err := scheduler.SchedulePeriodicDeploy(cfg.Watch.DeployInterval, func() {
			wc.scheduledDeploy(ctx, root, cfg, recorder, tracker)
		}); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if serr := scheduler.Stop(); serr != nil {
				slog.Error("Scheduler shutdown failed", logfields.Error(serr))
			}
		}()
	}

	var server *watch.Server
	if cfg.Watch.ListenAddr != "" {
		server = watch.NewServer(cfg.Watch.ListenAddr, tracker, recorder.Handler())
		server.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if serr := server.Stop(stopCtx); serr != nil {
				slog.Error("Status endpoint shutdown failed", logfields.Error(serr))
			}
		}()
	}

	slog.Info("Watching for content changes", "content_dir", cfg.Site.ContentDir)
	<-ctx.Done()
	slog.Info("Shutting down watch mode")
	return nil
}

// scheduledDeploy runs one deploy cycle from watch mode. Failures are logged
// and recorded, never fatal; the next tick tries again.
func (wc *WatchCmd) scheduledDeploy(ctx context.Context, root *CLI, cfg *config.Config, recorder metrics.Recorder, tracker *watch.StatusTracker) {
	slog.Info("Starting scheduled deploy")

	info := describeRepo(true)
	opts := deployOptions{gitInfo: info}
	res, rec, err := runDeploy(ctx, cfg, opts, recorder, &hugo.BinaryRunner{})

	outcome := string(history.OutcomeSuccess)
	if rec != nil {
		outcome = string(rec.Outcome)
		if herr := appendHistory(ctx, root, *rec); herr != nil {
			slog.Warn("Could not record deploy history", logfields.Error(herr))
		}
	}
	tracker.RecordDeploy(outcome, err)

	if err != nil {
		slog.Error("Scheduled deploy failed", logfields.Error(err))
		return
	}
	slog.Info("Scheduled deploy finished",
		logfields.Outcome(outcome),
		"uploaded", res.Uploaded, "deleted", res.Deleted, "skipped", res.Skipped,
		logfields.Bytes(res.Bytes), "duration", res.Duration.Round(time.Millisecond))
}

// previewWorkspace is the persistent staging directory watch rebuilds render
// into. It maps onto the configured publish directory so a local server can
// keep serving from a stable path between rebuilds, and Cleanup never removes
// it.
func previewWorkspace(cfg *config.Config) *workspace.Staging {
	return workspace.NewPersistent(filepath.Dir(cfg.Site.PublishDir), filepath.Base(cfg.Site.PublishDir))
}
