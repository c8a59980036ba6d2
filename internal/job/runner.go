// internal/job/runner.go
//
// Background-job runner with query-tag scoping.
//
// Context
// -------
// The Runner is the job-side twin of the HTTP middleware: each execution
// gets its own sqltag scope carrying `job:<name>`, so statements issued by
// background work are attributable in the slow-query log the same way
// request statements are.  Jobs register by name at boot; workers drain a
// buffered channel until Close.
//
// Workflow
// --------
//
//	r := job.NewRunner(2, 64, cfg.QueryTags.TagJobs)
//	r.Register("session-purge", purge)
//	r.Start(ctx)
//	…
//	r.Submit("session-purge")
//	…
//	r.Close()
//
// Notes
// -----
// • A panicking job is recovered, counted, and logged; the worker lives on.
// • The scope is discarded after every run, so a job can never inherit the
//   tags of the run before it.
// • Oxford commas, two spaces after periods.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/sqltag/internal/metrics"
	"github.com/yanizio/sqltag/internal/sqltag"
)

// Func is one unit of background work.
type Func func(ctx context.Context) error

// ErrUnknownJob is returned by Submit for a name never registered.
var ErrUnknownJob = errors.New("job: unknown job name")

// Runner executes registered jobs on a small worker pool.
type Runner struct {
	mu      sync.RWMutex
	jobs    map[string]Func
	queue   chan string
	workers int
	tagJobs bool

	g      *errgroup.Group
	cancel context.CancelFunc
	once   sync.Once
}

// NewRunner sizes the pool and queue.  tagJobs mirrors the query_tags
// config toggle.
func NewRunner(workers, buffer int, tagJobs bool) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		jobs:    map[string]Func{},
		queue:   make(chan string, buffer),
		workers: workers,
		tagJobs: tagJobs,
	}
}

// Register adds a named job.  Duplicate names are rejected so wiring errors
// surface at boot.
func (r *Runner) Register(name string, fn Func) error {
	if name == "" || fn == nil {
		return errors.New("job: name and func are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.jobs[name]; dup {
		return fmt.Errorf("job: %q already registered", name)
	}
	r.jobs[name] = fn
	return nil
}

// Start launches the worker pool.  Workers exit when ctx is cancelled or
// Close drains the queue.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.g, ctx = errgroup.WithContext(ctx)
	for i := 0; i < r.workers; i++ {
		r.g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case name, ok := <-r.queue:
					if !ok {
						return nil
					}
					r.runOne(ctx, name)
				}
			}
		})
	}
}

// Submit enqueues one run of a registered job.  Blocks when the queue is
// full; callers that cannot block should size the buffer accordingly.
func (r *Runner) Submit(name string) error {
	r.mu.RLock()
	_, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return ErrUnknownJob
	}
	r.queue <- name
	return nil
}

// Close stops accepting work, drains the queue, and waits for the workers.
func (r *Runner) Close() error {
	r.once.Do(func() { close(r.queue) })
	var err error
	if r.g != nil {
		err = r.g.Wait()
	}
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

// runOne executes a single job inside a fresh tag scope.
func (r *Runner) runOne(ctx context.Context, name string) {
	r.mu.RLock()
	fn := r.jobs[name]
	r.mu.RUnlock()
	if fn == nil {
		return
	}

	ctx = sqltag.WithScope(ctx)
	if r.tagJobs {
		sqltag.Update(ctx, map[string]string{"job": name})
	}

	defer func() {
		if rec := recover(); rec != nil {
			metrics.JobErrors.Inc()
			zap.S().Errorw("job panicked", "job", name, "err", rec)
		}
	}()

	metrics.JobsRun.Inc()
	if err := fn(ctx); err != nil {
		metrics.JobErrors.Inc()
		zap.S().Errorw("job failed", "job", name, "err", err)
		return
	}
	zap.S().Debugw("job done", "job", name)
}
