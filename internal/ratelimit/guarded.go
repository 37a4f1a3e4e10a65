package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Guarded bounds each Check with a timeout and decides what a backing-store
// failure means. Fail-closed returns the error; fail-open admits the request.
type Guarded struct {
	next     Limiter
	timeout  time.Duration
	failOpen bool
	log      *zap.Logger
}

// NewGuarded wraps next.
func NewGuarded(next Limiter, timeout time.Duration, failOpen bool, log *zap.Logger) *Guarded {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guarded{
		next:     next,
		timeout:  timeout,
		failOpen: failOpen,
		log:      log,
	}
}

// Check implements Limiter.
func (g *Guarded) Check(ctx context.Context, identifier string) (Decision, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	decision, err := g.next.Check(ctx, identifier)
	if err == nil {
		return decision, nil
	}

	if g.failOpen {
		g.log.Warn("rate limit store unavailable, admitting request",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return Decision{Allowed: true}, nil
	}
	g.log.Error("rate limit store unavailable, rejecting request",
		zap.String("identifier", identifier),
		zap.Error(err),
	)
	return Decision{}, err
}
