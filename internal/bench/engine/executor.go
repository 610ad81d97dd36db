package engine

import (
	"context"
	"time"
)

// Executor sends one query to one search provider.
type Executor interface {
	// Execute performs exactly one network call. The returned Execution
	// carries the latency of that call even when err is non-nil, as long
	// as the request was actually sent.
	Execute(ctx context.Context, query string, numResults int) (Execution, error)
	Name() string
	Close() error
}

type Execution struct {
	URLs       []string
	StatusCode int
	Latency    time.Duration
}
