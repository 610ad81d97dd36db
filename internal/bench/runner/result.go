package runner

import (
	"time"

	"github.com/google/uuid"
)

const (
	ModeParallel   = "parallel"
	ModeSequential = "sequential"
)

// QueryResult is the outcome of one query against one engine.
type QueryResult struct {
	Query      string    `json:"query"`
	API        string    `json:"api"`
	Success    bool      `json:"success"`
	LatencyMs  float64   `json:"latency_ms"`
	ResultURLs []string  `json:"result_urls"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// LatencyStats is in milliseconds and covers successful queries only.
type LatencyStats struct {
	Min  float64 `json:"min"`
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

type BenchmarkSummary struct {
	TotalQueries      int `json:"total_queries"`
	SuccessfulQueries int `json:"successful_queries"`
	FailedQueries     int `json:"failed_queries"`
	// Latency is nil when no query succeeded.
	Latency *LatencyStats `json:"latency"`
}

// BenchmarkRun is everything one engine produced in one invocation.
type BenchmarkRun struct {
	RunID                uuid.UUID        `json:"run_id"`
	API                  string           `json:"api"`
	ExecutionMode        string           `json:"execution_mode" enum:"parallel|sequential"`
	MaxWorkers           int              `json:"max_workers"`
	NumResults           int              `json:"num_results"`
	QueriesCount         int              `json:"queries_count"`
	TotalExecutionTimeMs float64          `json:"total_execution_time_ms"`
	Timestamp            time.Time        `json:"timestamp"`
	Summary              BenchmarkSummary `json:"summary"`
	Results              []QueryResult    `json:"results"`
}
