package gateway

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// limiterRegistry hands out one token-bucket limiter per model, created
// lazily on first use and reused thereafter.
type limiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func newLimiterRegistry(rps float64, burst int) *limiterRegistry {
	return &limiterRegistry{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (r *limiterRegistry) forModel(model string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[model]
	if !ok {
		l = rate.NewLimiter(rate.Limit(r.rps), r.burst)
		r.limiters[model] = l
	}
	return l
}

// wait blocks until the model's bucket has a token available or ctx is
// cancelled.
func (r *limiterRegistry) wait(ctx context.Context, model string) error {
	return r.forModel(model).Wait(ctx)
}
