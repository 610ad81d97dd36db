package engine

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Waiter is implemented by executors that need to hold a query back before
// it is sent. The runner calls Wait with the run context, before the
// per-query timeout starts.
type Waiter interface {
	Wait(ctx context.Context) error
}

// RateLimited caps the request rate of the wrapped executor. Execute does
// not block on the limiter; callers pace themselves through Wait.
type RateLimited struct {
	Executor
	limiter *rate.Limiter
}

func NewRateLimited(exec Executor, perSecond float64) *RateLimited {
	return &RateLimited{
		Executor: exec,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Wait blocks until the next request may be sent or ctx is done.
func (r *RateLimited) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit wait: %w", r.Name(), err)
	}
	return nil
}
