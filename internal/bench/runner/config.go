package runner

import (
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
)

const (
	DefaultNumResults   = 10
	DefaultMaxWorkers   = 20
	DefaultQueryTimeout = 30 * time.Second
	DefaultPause        = 100 * time.Millisecond
)

type Config struct {
	NumResults   int
	Parallel     bool
	MaxWorkers   int
	QueryTimeout time.Duration
	// Pause is slept between queries in sequential mode.
	Pause time.Duration
	// Progress, when set, is called after every finished query. In parallel
	// mode it is called from several goroutines.
	Progress func(done, failed, total int)
}

func DefaultConfig() Config {
	return Config{
		NumResults:   DefaultNumResults,
		MaxWorkers:   DefaultMaxWorkers,
		QueryTimeout: DefaultQueryTimeout,
		Pause:        DefaultPause,
	}
}

func (c Config) Validate() error {
	if c.NumResults <= 0 {
		return apperr.NewConfig(fmt.Sprintf("num results must be positive, got %d", c.NumResults))
	}
	if c.Parallel && c.MaxWorkers < 1 {
		return apperr.NewConfig(fmt.Sprintf("max workers must be at least 1, got %d", c.MaxWorkers))
	}
	if c.QueryTimeout < 0 {
		return apperr.NewConfig(fmt.Sprintf("query timeout must not be negative, got %s", c.QueryTimeout))
	}
	return nil
}

func (c Config) ExecutionMode() string {
	if c.Parallel {
		return ModeParallel
	}
	return ModeSequential
}

func (c Config) workers() int {
	if c.Parallel {
		return c.MaxWorkers
	}
	return 1
}
