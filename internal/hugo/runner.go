// Package hugo wraps execution of the external hugo binary.
//
// Hugo itself stays an external tool; this package only shells out, the same
// way the original deploy workflow did, but with captured output, typed
// errors, and context cancellation.
package hugo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	bperrors "git.home.luguber.info/inful/blogpub/internal/errors"
)

// ErrHugoBinaryNotFound indicates the hugo binary is not on PATH.
var ErrHugoBinaryNotFound = errors.New("hugo binary not found in PATH")

// BuildOptions controls a single hugo invocation.
type BuildOptions struct {
	SiteDir     string // working directory of the hugo site (repo root)
	Destination string // --destination; empty uses hugo's default
	Environment string // --environment (the "named deployment environment" of the deploy scripts)
	BaseURL     string // --baseURL override, empty keeps site config
	BuildDrafts bool   // -D
	CleanDest   bool   // --cleanDestinationDir
	MinifyOff   bool   // disables --minify (minify is on by default for deploy builds)
	Port        int    // hugo server port (Serve only)
}

// Result describes a completed hugo run.
type Result struct {
	Duration time.Duration
	Stdout   string
	Stderr   string
}

// Runner abstracts how the static site rendering step is performed, so tests
// can substitute a no-op without a hugo binary installed.
type Runner interface {
	Build(ctx context.Context, opts BuildOptions) (*Result, error)
}

// BinaryRunner invokes the `hugo` binary present on PATH.
type BinaryRunner struct{}

func (b *BinaryRunner) Build(ctx context.Context, opts BuildOptions) (*Result, error) {
	if _, err := exec.LookPath("hugo"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHugoBinaryNotFound, err)
	}

	args := buildArgs(opts)
	cmd := exec.CommandContext(ctx, "hugo", args...)
	cmd.Dir = opts.SiteDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Invoking hugo", "dir", opts.SiteDir, "args", args)
	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Duration: time.Since(start),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if res.Stderr != "" {
		slog.Warn("hugo stderr", "output", res.Stderr)
	}

	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		// Hugo reports errors on either stream depending on version.
		output := res.Stderr
		if output == "" {
			output = res.Stdout
		} else if res.Stdout != "" {
			output = res.Stdout + "\n" + res.Stderr
		}
		if output != "" {
			return res, bperrors.HugoExecutionError(fmt.Errorf("%w: %s", err, output))
		}
		return res, bperrors.HugoExecutionError(err)
	}

	// Hugo exiting zero without producing the destination means nothing was
	// rendered; catch it here rather than mirroring an empty tree.
	if opts.Destination != "" {
		if _, statErr := os.Stat(opts.Destination); statErr != nil {
			return res, bperrors.BuildFailed(fmt.Errorf("output directory %s missing after build: %w", opts.Destination, statErr))
		}
	}

	slog.Info("Hugo build finished", "duration", res.Duration)
	return res, nil
}

func buildArgs(opts BuildOptions) []string {
	var args []string
	if opts.Environment != "" {
		args = append(args, "--environment", opts.Environment)
	}
	if opts.Destination != "" {
		args = append(args, "--destination", opts.Destination)
	}
	if opts.BaseURL != "" {
		args = append(args, "--baseURL", opts.BaseURL)
	}
	if opts.CleanDest {
		args = append(args, "--cleanDestinationDir")
	}
	if opts.BuildDrafts {
		args = append(args, "-D")
	}
	if !opts.MinifyOff {
		args = append(args, "--minify")
	}
	if opts.Port > 0 {
		args = append(args, "--port", strconv.Itoa(opts.Port))
	}
	return args
}

// NoopRunner performs no build; useful in tests or when only planning is desired.
type NoopRunner struct{}

func (n *NoopRunner) Build(_ context.Context, opts BuildOptions) (*Result, error) {
	slog.Debug("NoopRunner skipping hugo build", "dir", opts.SiteDir)
	return &Result{}, nil
}
