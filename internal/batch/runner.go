// Package batch runs many selections concurrently from a manifest.
package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/excerpt/internal/export"
	"github.com/dusk-indust/excerpt/internal/selector"
)

// Runner executes jobs against a shared selector engine. Unlike a single
// Select call, a run does not stop at the first failing job: every job gets
// its own Result.
type Runner struct {
	engine     *selector.Engine
	limit      int
	expand     func([]string) ([]string, error)
	onProgress func(ProgressEvent)
	logger     *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds the number of jobs in flight. Values below one
// mean one.
func WithConcurrency(n int) Option {
	return func(r *Runner) { r.limit = max(n, 1) }
}

// WithPresets expands preset references in job selectors before selection.
func WithPresets(expand func([]string) ([]string, error)) Option {
	return func(r *Runner) { r.expand = expand }
}

// WithProgress registers a callback invoked from worker goroutines.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(r *Runner) { r.onProgress = fn }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a Runner that selects with engine.
func NewRunner(engine *selector.Engine, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		limit:  1,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes jobs and returns their results in job order. The returned
// error is non-nil only when ctx ends before every job ran; jobs that never
// started are reported as failed with the context error.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]export.Result, error) {
	results := make([]export.Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)

	for i, job := range jobs {
		r.emit(ProgressEvent{Index: i, Job: job.Name, Status: ProgressPending})
	}

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = r.fail(i, job, err)
				return nil
			}
			results[i] = r.runJob(i, job)
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

func (r *Runner) runJob(i int, job Job) export.Result {
	r.emit(ProgressEvent{Index: i, Job: job.Name, Status: ProgressWorking})
	start := time.Now()

	mode, err := selector.ParseMode(job.Mode)
	if err != nil {
		return r.fail(i, job, err)
	}

	sels := []string(job.Selectors)
	if r.expand != nil {
		if sels, err = r.expand(sels); err != nil {
			return r.fail(i, job, err)
		}
	}

	content, err := os.ReadFile(job.File)
	if err != nil {
		return r.fail(i, job, fmt.Errorf("read %s: %w", job.File, err))
	}

	text, err := r.engine.Select(string(content), sels, job.Hint(), mode)
	if err != nil {
		return r.fail(i, job, err)
	}

	r.logger.Debug("job complete",
		zap.String("job", job.Name),
		zap.String("file", job.File),
		zap.Int("selectors", len(sels)),
		zap.Duration("elapsed", time.Since(start)),
	)
	r.emit(ProgressEvent{Index: i, Job: job.Name, Status: ProgressComplete})
	return export.NewResult(job.Name, job.File, []string(job.Selectors), mode, text, nil).WithFileType(job.Hint())
}

func (r *Runner) fail(i int, job Job, err error) export.Result {
	r.logger.Warn("job failed",
		zap.String("job", job.Name),
		zap.String("file", job.File),
		zap.Error(err),
	)
	r.emit(ProgressEvent{Index: i, Job: job.Name, Status: ProgressFailed, Message: err.Error()})
	mode, _ := selector.ParseMode(job.Mode)
	return export.NewResult(job.Name, job.File, []string(job.Selectors), mode, "", err).WithFileType(job.Hint())
}

// emit sends a progress event if a callback is registered.
func (r *Runner) emit(ev ProgressEvent) {
	if r.onProgress != nil {
		r.onProgress(ev)
	}
}
