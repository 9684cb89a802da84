// Package runner executes the per-file pipeline across a fixed-size worker
// pool. Results come back in input order regardless of completion order, so
// reports are reproducible across runs.
package runner

import (
	"context"
	"io"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"

	"flackit/internal/report"
)

// Task runs the full pipeline for one file and returns its result.
type Task func(ctx context.Context, path string) report.FileResult

// Pool is a fixed-size worker pool.
type Pool struct {
	workers        int
	progressWriter io.Writer
	progressLabel  string
}

// Option configures a pool.
type Option func(*Pool)

// WithProgress renders a progress bar to w while the batch runs.
func WithProgress(w io.Writer, label string) Option {
	return func(p *Pool) {
		p.progressWriter = w
		p.progressLabel = label
	}
}

// New builds a pool of the given size; size <= 0 means one worker per CPU.
func New(workers int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{workers: workers}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Run dispatches one task per path and blocks until all complete. Results
// are keyed by input index and returned in input order. Cancelling the
// context stops dispatch of new tasks; in-flight tasks finish their current
// step, and undispatched paths come back with the context error recorded.
func (p *Pool) Run(ctx context.Context, paths []string, task Task) []report.FileResult {
	results := make([]report.FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	bar := p.newBar(len(paths))
	finish := func(i int, res report.FileResult) {
		res.Index = i
		res.Path = paths[i]
		results[i] = res
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if p.workers == 1 {
		// Sequential mode: no goroutines, deterministic execution order.
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				finish(i, report.FileResult{Err: err.Error()})
				continue
			}
			finish(i, task(ctx, path))
		}
		return results
	}

	type item struct {
		index int
		path  string
	}
	tasks := make(chan item)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range tasks {
				res := task(ctx, it.path)
				mu.Lock()
				finish(it.index, res)
				mu.Unlock()
			}
		}()
	}

	for i, path := range paths {
		select {
		case tasks <- item{index: i, path: path}:
		case <-ctx.Done():
			mu.Lock()
			finish(i, report.FileResult{Err: ctx.Err().Error()})
			mu.Unlock()
		}
	}
	close(tasks)
	wg.Wait()

	if bar != nil {
		_ = bar.Finish()
	}
	return results
}

func (p *Pool) newBar(total int) *progressbar.ProgressBar {
	if p.progressWriter == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.progressWriter),
		progressbar.OptionSetDescription(p.progressLabel),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(30),
	)
}
