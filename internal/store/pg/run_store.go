package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/searchbench/internal/bench/runner"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const schema = `
CREATE TABLE IF NOT EXISTS bench_runs (
    run_id                  UUID PRIMARY KEY,
    api                     TEXT NOT NULL,
    execution_mode          TEXT NOT NULL,
    max_workers             INT NOT NULL,
    num_results             INT NOT NULL,
    queries_count           INT NOT NULL,
    total_execution_time_ms DOUBLE PRECISION NOT NULL,
    successful_queries      INT NOT NULL,
    failed_queries          INT NOT NULL,
    latency_min             DOUBLE PRECISION,
    latency_p50             DOUBLE PRECISION,
    latency_p90             DOUBLE PRECISION,
    latency_p95             DOUBLE PRECISION,
    latency_p99             DOUBLE PRECISION,
    latency_max             DOUBLE PRECISION,
    latency_mean            DOUBLE PRECISION,
    created_at              TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS bench_query_results (
    run_id      UUID NOT NULL REFERENCES bench_runs (run_id) ON DELETE CASCADE,
    position    INT NOT NULL,
    query       TEXT NOT NULL,
    success     BOOLEAN NOT NULL,
    latency_ms  DOUBLE PRECISION NOT NULL,
    status_code INT,
    error       TEXT,
    result_urls TEXT[] NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS bench_runs_api_created_idx ON bench_runs (api, created_at DESC);
`

var ErrRunNotFound = errors.New("run not found")

// RunStore archives finished benchmark runs so they can be compared over time.
type RunStore struct {
	pool *ConnectionPool
}

func NewRunStore(pool *ConnectionPool) *RunStore {
	return &RunStore{pool: pool}
}

func (s *RunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Pool().Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveRun stores the run and all of its query results in one transaction.
func (s *RunStore) SaveRun(ctx context.Context, run *runner.BenchmarkRun) error {
	tx, err := s.pool.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	lat := run.Summary.Latency
	_, err = tx.Exec(ctx, `
		INSERT INTO bench_runs (
			run_id, api, execution_mode, max_workers, num_results, queries_count,
			total_execution_time_ms, successful_queries, failed_queries,
			latency_min, latency_p50, latency_p90, latency_p95, latency_p99, latency_max, latency_mean,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		run.RunID, run.API, run.ExecutionMode, run.MaxWorkers, run.NumResults, run.QueriesCount,
		run.TotalExecutionTimeMs, run.Summary.SuccessfulQueries, run.Summary.FailedQueries,
		statField(lat, func(l *runner.LatencyStats) float64 { return l.Min }),
		statField(lat, func(l *runner.LatencyStats) float64 { return l.P50 }),
		statField(lat, func(l *runner.LatencyStats) float64 { return l.P90 }),
		statField(lat, func(l *runner.LatencyStats) float64 { return l.P95 }),
		statField(lat, func(l *runner.LatencyStats) float64 { return l.P99 }),
		statField(lat, func(l *runner.LatencyStats) float64 { return l.Max }),
		statField(lat, func(l *runner.LatencyStats) float64 { return l.Mean }),
		run.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	columns := []string{"run_id", "position", "query", "success", "latency_ms", "status_code", "error", "result_urls", "finished_at"}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"bench_query_results"}, columns,
		pgx.CopyFromSlice(len(run.Results), func(i int) ([]any, error) {
			qr := run.Results[i]
			urls := qr.ResultURLs
			if urls == nil {
				urls = []string{}
			}
			return []any{
				run.RunID, i, qr.Query, qr.Success, qr.LatencyMs,
				nullableInt(qr.StatusCode), nullableString(qr.Error), urls, qr.Timestamp,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy query results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	slog.Info("Archived run", "run_id", run.RunID, "api", run.API, "results", copied)
	return nil
}

// GetSummary loads the stored summary of one run.
func (s *RunStore) GetSummary(ctx context.Context, runID uuid.UUID) (*runner.BenchmarkSummary, error) {
	var (
		summary runner.BenchmarkSummary
		minV    *float64
		p50     *float64
		p90     *float64
		p95     *float64
		p99     *float64
		maxV    *float64
		meanV   *float64
	)
	err := s.pool.Pool().QueryRow(ctx, `
		SELECT queries_count, successful_queries, failed_queries,
		       latency_min, latency_p50, latency_p90, latency_p95, latency_p99, latency_max, latency_mean
		FROM bench_runs WHERE run_id = $1`, runID,
	).Scan(&summary.TotalQueries, &summary.SuccessfulQueries, &summary.FailedQueries,
		&minV, &p50, &p90, &p95, &p99, &maxV, &meanV)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select run: %w", err)
	}

	if minV != nil {
		summary.Latency = &runner.LatencyStats{
			Min: *minV, P50: *p50, P90: *p90, P95: *p95, P99: *p99, Max: *maxV, Mean: *meanV,
		}
	}
	return &summary, nil
}

// CountResults returns how many query results are stored for a run.
func (s *RunStore) CountResults(ctx context.Context, runID uuid.UUID) (int, error) {
	var n int
	err := s.pool.Pool().QueryRow(ctx,
		`SELECT count(*) FROM bench_query_results WHERE run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

func statField(l *runner.LatencyStats, get func(*runner.LatencyStats) float64) *float64 {
	if l == nil {
		return nil
	}
	v := get(l)
	return &v
}

func nullableInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
