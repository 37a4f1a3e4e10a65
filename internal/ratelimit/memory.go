package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps records in process memory; they are lost on restart.
type MemoryLimiter struct {
	cfg     Config
	now     Clock
	mu      sync.Mutex
	records map[string]record
}

// NewMemoryLimiter creates a MemoryLimiter. A nil clock means time.Now.
func NewMemoryLimiter(cfg Config, clock Clock) (*MemoryLimiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}
	return &MemoryLimiter{
		cfg:     cfg,
		now:     clock,
		records: make(map[string]record),
	}, nil
}

// Check applies the window rules to identifier. The read, the comparison and
// the increment happen under one lock.
func (l *MemoryLimiter) Check(_ context.Context, identifier string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.cfg.SweepOnCheck {
		l.sweepLocked(now)
	}

	rec, ok := l.records[identifier]
	if !ok || rec.expired(now, l.cfg.Window) {
		l.records[identifier] = record{count: 1, windowStart: now}
		return Decision{Allowed: true, Count: 1}, nil
	}

	if rec.count >= l.cfg.MaxAttempts {
		return denied(rec.count, now.Sub(rec.windowStart), l.cfg.Window), nil
	}

	rec.count++
	l.records[identifier] = rec
	return Decision{Allowed: true, Count: rec.count}, nil
}

// Sweep drops every record whose window has elapsed and reports how many went.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(l.now())
}

func (l *MemoryLimiter) sweepLocked(now time.Time) int {
	removed := 0
	for id, rec := range l.records {
		if rec.expired(now, l.cfg.Window) {
			delete(l.records, id)
			removed++
		}
	}
	return removed
}

// Len reports how many identifiers are tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Count reports the attempts recorded for identifier in its current window.
func (l *MemoryLimiter) Count(identifier string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[identifier]
	if !ok || rec.expired(l.now(), l.cfg.Window) {
		return 0
	}
	return rec.count
}

// Start runs the background sweep until ctx is done. It returns immediately
// when SweepInterval is zero.
func (l *MemoryLimiter) Start(ctx context.Context) {
	if l.cfg.SweepInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(l.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}
