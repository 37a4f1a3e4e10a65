package middleware

import (
	"context"
	"sync"
	"time"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPThrottle is a token bucket per client IP. Idle buckets are evicted after ttl.
type IPThrottle struct {
	mu    sync.Mutex
	ips   map[string]*throttleEntry
	rate  rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time
}

// NewIPThrottle allows perMinute requests per IP with the given burst.
// A non-positive perMinute disables throttling.
func NewIPThrottle(perMinute, burst int, ttl time.Duration) *IPThrottle {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &IPThrottle{
		ips:   make(map[string]*throttleEntry),
		rate:  limit,
		burst: burst,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Allow takes one token from ip's bucket.
func (t *IPThrottle) Allow(ip string) bool {
	t.mu.Lock()
	now := t.now()
	entry, ok := t.ips[ip]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.ips[ip] = entry
	}
	entry.lastSeen = now
	t.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Sweep drops buckets idle for longer than ttl and reports how many it removed.
func (t *IPThrottle) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for ip, e := range t.ips {
		if now.Sub(e.lastSeen) > t.ttl {
			delete(t.ips, ip)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked IPs.
func (t *IPThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ips)
}

// Start sweeps every ttl until ctx is done.
func (t *IPThrottle) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(t.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Sweep()
			}
		}
	}()
}

// Handler rejects requests over the limit with 429.
func (t *IPThrottle) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !t.Allow(ClientIP(c)) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}
		return c.Next()
	}
}

// ClientIP resolves the caller address. X-Forwarded-For is only honoured when
// the app is configured with it as ProxyHeader; otherwise the socket wins.
func ClientIP(c *fiber.Ctx) string {
	return services.ClientIP(c.IP(), c.Context().RemoteIP().String())
}
