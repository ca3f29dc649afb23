package refresh

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits or rejects manual refresh requests
type Limiter interface {
	Allow(ctx context.Context) bool
}

// localLimiter is an in-process token bucket
type localLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter allows perMinute requests per minute, bursting up to perMinute
func NewLocalLimiter(perMinute int) Limiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &localLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

func (l *localLimiter) Allow(context.Context) bool {
	return l.limiter.Allow()
}

// Unlimited admits everything
type Unlimited struct{}

// Allow always returns true
func (Unlimited) Allow(context.Context) bool { return true }
