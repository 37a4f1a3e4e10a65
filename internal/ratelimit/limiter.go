// Package ratelimit throttles order submissions per identifier within a fixed
// window that opens on the first attempt.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// Decision is the outcome of a single Check.
type Decision struct {
	Allowed    bool          `json:"allowed"`
	Message    string        `json:"message,omitempty"`
	Count      int           `json:"count"`
	RetryAfter time.Duration `json:"-"`
}

// Limiter decides whether an identifier may submit again.
type Limiter interface {
	Check(ctx context.Context, identifier string) (Decision, error)
}

// Config controls the window and the stale-record eviction knobs.
type Config struct {
	MaxAttempts int
	Window      time.Duration
	// SweepOnCheck purges every expired record during each Check.
	SweepOnCheck bool
	// SweepInterval drives the background sweep started by Start; 0 disables it.
	SweepInterval time.Duration
}

// ErrInvalidConfig is returned by constructors given a non-positive limit or window.
var ErrInvalidConfig = errors.New("rate limit: max attempts and window must be positive")

func (c Config) validate() error {
	if c.MaxAttempts < 1 || c.Window <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// record is the per-identifier state.
type record struct {
	count       int
	windowStart time.Time
}

func (r record) expired(now time.Time, window time.Duration) bool {
	return now.Sub(r.windowStart) >= window
}

// denied builds the rejection for an identifier whose window is still open.
func denied(count int, elapsed, window time.Duration) Decision {
	remaining := window - elapsed
	return Decision{
		Allowed:    false,
		Count:      count,
		RetryAfter: remaining,
		Message:    fmt.Sprintf("Too many attempts. Please try again in %d minutes.", remainingMinutes(remaining)),
	}
}

func remainingMinutes(remaining time.Duration) int {
	return int(math.Ceil(float64(remaining) / float64(time.Minute)))
}
