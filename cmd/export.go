package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/achilleasa/artexport/asset"
	"github.com/achilleasa/artexport/config"
	"github.com/achilleasa/artexport/log"
	"github.com/achilleasa/artexport/metrics"
	"github.com/achilleasa/artexport/pipeline"
	"github.com/achilleasa/artexport/stage"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

const exitUsage = 2

// Export one or more source scenes to the asset tree.
func ExportAssets(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return cli.NewExitError("missing source file argument", exitUsage)
	}

	cfg, self, err := loadConfig(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}
	if !verbosityFlagged(ctx) {
		log.SetLevel(cfg.LogLevel)
	}

	// Child tool processes log at our verbosity.
	if cfg.Pipeline.Tool.Binary == self {
		cfg.Pipeline.Tool.PrefixArgs = append(verbosityArgs(), cfg.Pipeline.Tool.PrefixArgs...)
	}

	jobs, err := buildJobs(ctx, cfg)
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	p := pipeline.New(cfg.Pipeline, &pipeline.ExecRunner{}, recorder)

	start := time.Now()
	results := p.RunBatch(runCtx, jobs, cfg.Jobs)
	displayRunSummary(results, cfg.Pipeline.SourceRoot, time.Since(start))

	if cfg.MetricsFile != "" {
		if err = recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warningf("could not write metrics to %q: %v", cfg.MetricsFile, err)
		}
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Source, res.Err)
		}
	}
	if failed != 0 {
		return cli.NewExitError(fmt.Sprintf("%d of %d exports failed", failed, len(results)), 1)
	}
	return nil
}

// Print the destination path of each source scene.
func MapAssetPath(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return cli.NewExitError("missing source file argument", exitUsage)
	}

	cfg, _, err := loadConfig(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}

	for _, src := range ctx.Args() {
		absSrc, err := filepath.Abs(src)
		if err != nil {
			return err
		}
		dest, err := mapPath(cfg, absSrc)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		fmt.Fprintln(ctx.App.Writer, dest)
	}
	return nil
}

func loadConfig(ctx *cli.Context) (*config.Config, string, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(filepath.Dir(self), self, config.CLIArgs{
		ConfigPath:  ctx.String("config"),
		Jobs:        ctx.Int("jobs"),
		MetricsFile: ctx.String("metrics-file"),
	})
	if err != nil {
		return nil, "", err
	}
	if cfg.Path != "" {
		logger.Infof("loaded configuration from %q", cfg.Path)
	}
	return cfg, self, nil
}

func buildJobs(ctx *cli.Context, cfg *config.Config) ([]pipeline.Job, error) {
	var (
		forced    stage.Category
		hasForced bool
	)
	if name := ctx.String("category"); name != "" {
		cat, err := stage.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		forced, hasForced = cat, true
	}

	jobs := make([]pipeline.Job, 0, ctx.NArg())
	for _, src := range ctx.Args() {
		cat := forced
		if !hasForced {
			var err error
			if cat, err = cfg.CategoryFor(src); err != nil {
				return nil, fmt.Errorf("%s: %v (use --category)", src, err)
			}
		}
		jobs = append(jobs, pipeline.Job{Source: src, Category: cat})
	}
	return jobs, nil
}

func displayRunSummary(results []*pipeline.Result, srcRoot string, elapsed time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Run", "Source", "Category", "Status", "Warnings", "Time"})

	failed := 0
	for _, res := range results {
		status := res.State.String()
		if res.Err != nil {
			failed++
			status = fmt.Sprintf("%s (%s)", status, failureReason(res.Err))
		}
		source := res.Source
		if rel, err := filepath.Rel(srcRoot, res.Source); err == nil {
			source = rel
		}
		table.Append([]string{
			res.RunID[:8],
			source,
			res.Category.String(),
			status,
			fmt.Sprintf("%d", len(res.Warnings)),
			res.Duration.Round(time.Millisecond).String(),
		})
	}
	table.SetFooter([]string{"", "", "", fmt.Sprintf("%d FAILED", failed), "TOTAL", elapsed.Round(time.Millisecond).String()})

	table.Render()
	logger.Noticef("export summary\n%s", buf.String())
}

func mapPath(cfg *config.Config, src string) (string, error) {
	return asset.MapPath(src, cfg.Pipeline.SourceRoot, cfg.Pipeline.DestRoot, cfg.Pipeline.InterchangeExt)
}

// Get a short label for the summary table.
func failureReason(err error) string {
	var (
		selErr  *stage.StructuralSelectionError
		pathErr *asset.PathValidationError
	)
	switch {
	case errors.As(err, &selErr):
		return string(selErr.Kind)
	case errors.Is(err, stage.ErrInvariantViolation):
		return "invariant_violation"
	case errors.As(err, &pathErr):
		return "invalid_path"
	case errors.Is(err, pipeline.ErrNormalizationFailed):
		return "normalization_failed"
	case errors.Is(err, pipeline.ErrExportFailed):
		return "export_failed"
	}
	return "error"
}
