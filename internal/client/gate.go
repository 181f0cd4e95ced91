package client

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate enforces a minimum interval between consecutive calls to one provider.
// A single Gate is shared by every caller that targets the same provider, so
// concurrent callers queue behind each other instead of each sleeping on its
// own.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewGate creates a fixed-interval gate: one call immediately, then one call
// per interval.
func NewGate(interval time.Duration) *Gate {
	return &Gate{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the caller may issue its request. A nil gate never blocks.
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

// Interval returns the configured minimum spacing between calls
func (g *Gate) Interval() time.Duration {
	if g == nil {
		return 0
	}
	return g.interval
}

// reserveAt books the next slot as seen at now and returns how long the caller
// would have to wait for it.
func (g *Gate) reserveAt(now time.Time) time.Duration {
	return g.limiter.ReserveN(now, 1).DelayFrom(now)
}
