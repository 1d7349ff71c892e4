package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/rohmanhakim/css-svg/internal/config"
	"github.com/rohmanhakim/css-svg/internal/metadata"
	"github.com/rohmanhakim/css-svg/internal/pipeline"
	"github.com/rohmanhakim/css-svg/internal/storage"
)

// RunOptions controls where rewritten stylesheets go.
type RunOptions struct {
	// OutDir receives rewritten files under their base name; empty rewrites in place
	OutDir string
	// DryRun prints a unified diff per changed file and writes nothing
	DryRun bool
	Out    io.Writer
}

type fileOutcome struct {
	path     string
	inlined  int
	skipped  int
	diff     string
	writeDst string
}

// Run rewrites every file concurrently, each with its own conversion cache.
// A failing file does not stop the others; all failures are returned together.
func Run(ctx context.Context, cfg config.Config, files []string, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	logger := metadata.NewLogger(cfg.Verbose())
	defer logger.Sync() //nolint:errcheck
	recorder := metadata.NewRecorder(logger)
	sink := storage.NewLocalSink(&recorder)
	transformer := pipeline.NewFromConfig(cfg, pipeline.WithLogger(logger))

	outcomes := make([]fileOutcome, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency())
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			outcome, err := processFile(gctx, transformer, &sink, path, opts)
			outcomes[i] = outcome
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
			}
			// per-file failures are collected, not propagated, so siblings finish
			return nil
		})
	}
	_ = g.Wait()

	for _, outcome := range outcomes {
		if outcome.path == "" {
			continue
		}
		if opts.DryRun {
			fmt.Fprint(out, outcome.diff)
			continue
		}
		if outcome.writeDst != "" {
			fmt.Fprintf(out, "%s: inlined %d, skipped %d -> %s\n", outcome.path, outcome.inlined, outcome.skipped, outcome.writeDst)
		} else {
			fmt.Fprintf(out, "%s: inlined %d, skipped %d\n", outcome.path, outcome.inlined, outcome.skipped)
		}
	}

	return multierr.Combine(errs...)
}

func processFile(
	ctx context.Context,
	transformer *pipeline.Transformer,
	sink storage.Sink,
	path string,
	opts RunOptions,
) (fileOutcome, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fileOutcome{}, err
	}

	result, err := transformer.Rewrite(ctx, contents)
	if err != nil {
		return fileOutcome{}, err
	}

	outcome := fileOutcome{
		path:    path,
		inlined: len(result.Inlined()),
		skipped: len(result.Skipped()),
	}

	if opts.DryRun {
		outcome.diff = unifiedDiff(filepath.ToSlash(path), contents, result.Content())
		return outcome, nil
	}

	if opts.OutDir == "" && !result.Changed() {
		return outcome, nil
	}

	writeResult, writeErr := sink.Write(path, opts.OutDir, result.Content())
	if writeErr != nil {
		return outcome, writeErr
	}
	outcome.writeDst = writeResult.Path()
	return outcome, nil
}
