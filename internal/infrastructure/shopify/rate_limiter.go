package shopify

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing Admin API calls with one token bucket per shop
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing rps requests per second per shop.
// A non-positive rps disables throttling.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      limit,
		burst:    burst,
	}
}

func (r *RateLimiter) limiterFor(shop string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[shop]
	if !ok {
		l = rate.NewLimiter(r.rps, r.burst)
		r.limiters[shop] = l
	}
	return l
}

// Wait blocks until the shop's bucket has a token or ctx is done
func (r *RateLimiter) Wait(ctx context.Context, shop string) error {
	if r == nil {
		return nil
	}
	return r.limiterFor(shop).Wait(ctx)
}
