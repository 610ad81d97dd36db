package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/DjordjeVuckovic/searchbench/internal/bench/engine"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/profile"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/queries"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/report"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/runner"
	"github.com/DjordjeVuckovic/searchbench/internal/store/pg"
)

var errOutputFailed = errors.New("one or more engines failed to produce output")

// runArchive is the subset of pg.RunStore used after each engine finishes.
type runArchive interface {
	SaveRun(ctx context.Context, run *runner.BenchmarkRun) error
}

type benchmark struct {
	profile *profile.Profile
	out     io.Writer
	archive runArchive
}

// loadQueries reads the profile's query file and samples it when requested.
func loadQueries(p *profile.Profile) ([]string, error) {
	set, err := queries.LoadFromFile(p.Queries.File)
	if err != nil {
		return nil, err
	}

	all := set.Queries
	if p.Queries.Sample > 0 {
		seed := p.Queries.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		all = queries.Sample(all, p.Queries.Sample, rand.New(rand.NewPCG(seed, seed)))
		slog.Debug("Sampled queries", "sample", len(all), "seed", seed)
	}

	slog.Info("Loaded queries", "count", len(all), "file", p.Queries.File, "skipped", len(set.Warnings))
	return all, nil
}

// openArchive connects to Postgres when url is set. The returned close func
// is always safe to call.
func openArchive(ctx context.Context, url string) (runArchive, func(), error) {
	if url == "" {
		return nil, func() {}, nil
	}

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: url})
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect run archive: %w", err)
	}

	store := pg.NewRunStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, func() {}, err
	}
	return store, pool.Close, nil
}

// run benchmarks every executor in turn. Engine failures are logged and
// reported through errOutputFailed once all engines had their turn.
func (b *benchmark) run(ctx context.Context, executors []engine.Executor, qs []string) error {
	r := runner.New(b.profile.RunnerConfig())

	var (
		runs   []*runner.BenchmarkRun
		failed bool
	)
	for _, exec := range executors {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.Info("Running benchmark", "api", exec.Name(), "queries", len(qs))
		run, err := r.Run(ctx, exec, qs)
		if err != nil {
			slog.Error("Benchmark failed", "api", exec.Name(), "error", err)
			failed = true
			continue
		}
		runs = append(runs, run)

		path, err := report.WriteJSON(run, b.profile.Output.Dir)
		if err != nil {
			slog.Error("Failed to write results", "api", run.API, "error", err)
			failed = true
		} else {
			slog.Info("Saved results", "api", run.API, "path", path)
		}

		if b.archive != nil {
			if err := b.archive.SaveRun(ctx, run); err != nil {
				slog.Error("Failed to archive run", "api", run.API, "run_id", run.RunID, "error", err)
				failed = true
			}
		}
	}

	switch {
	case len(runs) == 1:
		report.WriteSummary(b.out, runs[0])
	case len(runs) > 1:
		report.WriteComparison(b.out, runs)
	}

	if failed {
		return errOutputFailed
	}
	return nil
}

// session holds the executors and archive of one invocation. It is built
// before any query is produced, so a bad engine setup fails without spending
// an LLM call or a dataset download.
type session struct {
	bench     *benchmark
	executors []engine.Executor
	closers   []func()
}

func prepare(ctx context.Context, cfg *cliConfig, p *profile.Profile, out io.Writer) (*session, error) {
	names, err := engines(p)
	if err != nil {
		return nil, err
	}

	executors, cleanup, err := engine.NewAll(names, engine.CredentialsFromEnv(), p.EngineOpts())
	if err != nil {
		return nil, err
	}

	archive, closeArchive, err := openArchive(ctx, cfg.pgURL())
	if err != nil {
		cleanup()
		return nil, err
	}

	return &session{
		bench:     &benchmark{profile: p, out: out, archive: archive},
		executors: executors,
		closers:   []func(){closeArchive, cleanup},
	}, nil
}

func (s *session) run(ctx context.Context, qs []string) error {
	return s.bench.run(ctx, s.executors, qs)
}

func (s *session) Close() {
	for _, c := range s.closers {
		c()
	}
}
