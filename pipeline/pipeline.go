package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/achilleasa/artexport/asset"
	"github.com/achilleasa/artexport/log"
	"github.com/achilleasa/artexport/stage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Config holds the filesystem layout and tool settings used by a pipeline.
type Config struct {
	SourceRoot string
	DestRoot   string

	// Native authoring format extension, e.g. ".scene".
	NativeExt string

	// Interchange format extension, e.g. ".fbx".
	InterchangeExt string

	// Parent directory for per-run work directories; the system default
	// if empty.
	TempDir string

	Tool ToolConfig
}

// Observer receives timing information about pipeline runs.
type Observer interface {
	ObserveStage(stage string, d time.Duration)
	ObserveRun(category, status string, d time.Duration)
}

// The outcome of one pipeline run.
type Result struct {
	RunID       string
	Source      string
	Destination string
	Category    stage.Category
	State       State
	Warnings    []string
	Duration    time.Duration
	Err         error
}

// A source file queued for a batch run.
type Job struct {
	Source   string
	Category stage.Category
}

// Pipeline converts source scenes into interchange assets by driving the
// authoring tool through a normalization and an export stage.
type Pipeline struct {
	logger   log.Logger
	cfg      Config
	runner   Runner
	observer Observer
}

// Create a new pipeline. The observer may be nil.
func New(cfg Config, runner Runner, observer Observer) *Pipeline {
	if abs, err := filepath.Abs(cfg.SourceRoot); err == nil {
		cfg.SourceRoot = abs
	}
	if abs, err := filepath.Abs(cfg.DestRoot); err == nil {
		cfg.DestRoot = abs
	}
	return &Pipeline{
		logger:   log.New("pipeline"),
		cfg:      cfg,
		runner:   runner,
		observer: observer,
	}
}

// Run the pipeline for a single source file. The returned result is never nil
// and the per-run work directory is removed before Run returns.
func (p *Pipeline) Run(ctx context.Context, src string, cat stage.Category) (*Result, error) {
	res := &Result{
		RunID:    uuid.NewString(),
		Source:   src,
		Category: cat,
		State:    Validating,
	}

	start := time.Now()
	err := p.run(ctx, res)
	res.Duration = time.Since(start)

	status := "success"
	if err != nil {
		status = "failure"
		res.State = Failed
		res.Err = err
		p.logger.Errorf("[%s] %s: %v", shortID(res.RunID), src, err)
	} else {
		res.State = Done
		p.logger.Noticef("[%s] exported %q to %q in %d ms", shortID(res.RunID), src, res.Destination, res.Duration.Nanoseconds()/1e6)
	}
	if p.observer != nil {
		p.observer.ObserveRun(cat.String(), status, res.Duration)
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, res *Result) error {
	id := shortID(res.RunID)

	// Validating
	sf, err := asset.ValidateSource(res.Source, p.cfg.NativeExt)
	if err != nil {
		return err
	}
	res.Source = sf.Path
	if !sf.NativeExt {
		msg := fmt.Sprintf("%s does not have the native %s extension", sf.Path, p.cfg.NativeExt)
		res.Warnings = append(res.Warnings, msg)
		p.logger.Warningf("[%s] %s", id, msg)
	}

	exportScript, ok := p.cfg.Tool.ExportScripts[res.Category]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoExportScript, res.Category)
	}

	// The destination mirrors the original source, never the intermediate.
	dest, err := asset.MapPath(sf.Path, p.cfg.SourceRoot, p.cfg.DestRoot, p.cfg.InterchangeExt)
	if err != nil {
		return &asset.PathValidationError{Path: sf.Path, Err: err}
	}

	// Normalizing
	res.State = Normalizing
	workDir, err := os.MkdirTemp(p.cfg.TempDir, "artexport-"+id+"-")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			p.logger.Warningf("[%s] could not remove work directory %q: %v", id, workDir, rmErr)
		}
	}()

	intermediate := filepath.Join(workDir, asset.ReplaceExt("normalized", p.cfg.NativeExt))
	inv := p.cfg.Tool.Invocation(Normalizing, sf.Path, p.cfg.Tool.NormalizeScript, intermediate)
	if err = p.runStage(ctx, id, inv); err != nil {
		return err
	}
	if _, err = os.Stat(intermediate); err != nil {
		return &ToolProcessError{Stage: Normalizing, Err: ErrMissingIntermediate}
	}

	// Exporting
	res.State = Exporting
	res.Destination = dest
	destDir, err := asset.MapDir(sf.Path, p.cfg.SourceRoot, p.cfg.DestRoot, p.cfg.InterchangeExt)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(destDir, 0755); err != nil {
		return err
	}
	inv = p.cfg.Tool.Invocation(Exporting, intermediate, exportScript, dest)
	return p.runStage(ctx, id, inv)
}

func (p *Pipeline) runStage(ctx context.Context, id string, inv Invocation) error {
	p.logger.Infof("[%s] %s: %s", id, inv.Stage, inv)

	start := time.Now()
	err := p.runner.Run(ctx, inv)
	if p.observer != nil {
		p.observer.ObserveStage(inv.Stage.String(), time.Since(start))
	}
	if err == nil {
		p.logger.Debugf("[%s] %s stage completed in %d ms", id, inv.Stage, time.Since(start).Nanoseconds()/1e6)
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		cause := stage.ParseDiagnostic(exitErr.Stderr)
		if cause == nil {
			cause = exitErr
		}
		return &ToolProcessError{Stage: inv.Stage, ExitCode: exitErr.Code, Err: cause}
	}
	return &ToolProcessError{Stage: inv.Stage, ExitCode: -1, Err: err}
}

// Run the pipeline for each job with at most limit runs in flight. A failing
// run does not affect the others. Results are returned in job order.
func (p *Pipeline) RunBatch(ctx context.Context, jobs []Job, limit int) []*Result {
	if limit < 1 {
		limit = 1
	}

	results := make([]*Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i], _ = p.Run(ctx, job.Source, job.Category)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
