package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/searchbench/internal/bench/engine"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Runner struct {
	config Config
}

func New(cfg Config) *Runner {
	return &Runner{config: cfg}
}

// Run sends every query to exec and returns one QueryResult per query, in
// input order. Individual query failures are recorded, never returned; the
// only errors are an invalid config or a context that ends before all
// queries could be scheduled.
func (r *Runner) Run(ctx context.Context, exec engine.Executor, queries []string) (*BenchmarkRun, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Starting benchmark",
		"api", exec.Name(),
		"queries", len(queries),
		"mode", r.config.ExecutionMode(),
		"max_workers", r.config.workers())

	start := time.Now()
	tracker := &progress{total: len(queries), report: r.config.Progress}

	var (
		results []QueryResult
		err     error
	)
	if r.config.Parallel && len(queries) > 1 {
		results, err = r.runParallel(ctx, exec, queries, tracker)
	} else {
		results, err = r.runSequential(ctx, exec, queries, tracker)
	}
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", exec.Name(), err)
	}

	total := time.Since(start)
	summary := Summarize(results)

	slog.Info("Benchmark finished",
		"api", exec.Name(),
		"successful", summary.SuccessfulQueries,
		"failed", summary.FailedQueries,
		"duration", total.Round(time.Millisecond))

	return &BenchmarkRun{
		RunID:                uuid.New(),
		API:                  exec.Name(),
		ExecutionMode:        r.config.ExecutionMode(),
		MaxWorkers:           r.config.workers(),
		NumResults:           r.config.NumResults,
		QueriesCount:         len(queries),
		TotalExecutionTimeMs: toMillis(total),
		Timestamp:            time.Now().UTC(),
		Summary:              summary,
		Results:              results,
	}, nil
}

func (r *Runner) runSequential(ctx context.Context, exec engine.Executor, queries []string, tracker *progress) ([]QueryResult, error) {
	results := make([]QueryResult, 0, len(queries))
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("schedule query %d of %d: %w", i+1, len(queries), err)
		}

		qr := r.executeOne(ctx, exec, q)
		results = append(results, qr)
		tracker.done(qr)

		if r.config.Pause > 0 && i < len(queries)-1 {
			if err := pause(ctx, r.config.Pause); err != nil {
				return nil, fmt.Errorf("pause after query %d of %d: %w", i+1, len(queries), err)
			}
		}
	}
	return results, nil
}

func (r *Runner) runParallel(ctx context.Context, exec engine.Executor, queries []string, tracker *progress) ([]QueryResult, error) {
	// Each worker owns results[i], so no lock is needed.
	results := make([]QueryResult, len(queries))

	var g errgroup.Group
	g.SetLimit(r.config.MaxWorkers)

	var scheduleErr error
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			scheduleErr = fmt.Errorf("schedule query %d of %d: %w", i+1, len(queries), err)
			break
		}
		g.Go(func() error {
			results[i] = r.executeOne(ctx, exec, q)
			tracker.done(results[i])
			return nil
		})
	}

	_ = g.Wait()
	if scheduleErr != nil {
		return nil, scheduleErr
	}
	return results, nil
}

func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Runner) executeOne(ctx context.Context, exec engine.Executor, query string) QueryResult {
	// Pacing waits on the run context so the query timeout only covers the call.
	if w, ok := exec.(engine.Waiter); ok {
		if err := w.Wait(ctx); err != nil {
			return r.failed(exec, query, err)
		}
	}

	callCtx := ctx
	if r.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.config.QueryTimeout)
		defer cancel()
	}

	execution, err := exec.Execute(callCtx, query, r.config.NumResults)

	qr := QueryResult{
		Query:      query,
		API:        exec.Name(),
		Success:    err == nil,
		LatencyMs:  toMillis(execution.Latency),
		ResultURLs: execution.URLs,
		StatusCode: execution.StatusCode,
		Timestamp:  time.Now().UTC(),
	}
	if qr.ResultURLs == nil {
		qr.ResultURLs = []string{}
	}
	if err != nil {
		qr.Error = err.Error()
		slog.Warn("query failed", "api", exec.Name(), "query", query, "error", err)
	}
	return qr
}

func (r *Runner) failed(exec engine.Executor, query string, err error) QueryResult {
	slog.Warn("query failed", "api", exec.Name(), "query", query, "error", err)
	return QueryResult{
		Query:      query,
		API:        exec.Name(),
		Error:      err.Error(),
		ResultURLs: []string{},
		Timestamp:  time.Now().UTC(),
	}
}

type progress struct {
	total     int
	completed atomic.Int64
	failed    atomic.Int64
	report    func(done, failed, total int)
}

func (p *progress) done(qr QueryResult) {
	done := p.completed.Add(1)
	failed := p.failed.Load()
	if !qr.Success {
		failed = p.failed.Add(1)
	}
	if p.report != nil {
		p.report(int(done), int(failed), p.total)
	}
	slog.Debug("query finished", "api", qr.API, "done", done, "failed", failed, "total", p.total)
}
