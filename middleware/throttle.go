package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttler is the capability behind the throttle provider. It is the burst
// policy: structurally identical to RateLimiter but a distinct pipeline
// stage, so a route can compose both.
type Throttler interface {
	CheckRequest(c Context, opts *ThrottleOptions) bool
}

// ThrottleOptions contains per-route throttling options
type ThrottleOptions struct {
	// MaxRequestsPerSecond caps sustained per-second throughput
	MaxRequestsPerSecond int
	// MaxRequestsPerMinute caps per-minute throughput; 0 disables the check
	MaxRequestsPerMinute int
	// KeyFunc extracts the throttle key from the request; defaults to RealIP
	KeyFunc func(c Context) string
}

// DefaultThrottleOptions returns a default throttle configuration
func DefaultThrottleOptions() *ThrottleOptions {
	return &ThrottleOptions{
		MaxRequestsPerSecond: 10,
	}
}

// ThrottlerProvider turns declarative throttle options into a middleware
// backed by a Throttler capability.
type ThrottlerProvider struct {
	throttler Throttler
}

// NewThrottlerProvider creates a new throttler provider
func NewThrottlerProvider(throttler Throttler) *ThrottlerProvider {
	return &ThrottlerProvider{throttler: throttler}
}

// GetMiddleware returns a middleware that rejects bursts with 429 and never
// invokes the rest of the chain for them.
func (p *ThrottlerProvider) GetMiddleware(opts *ThrottleOptions) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			if !p.throttler.CheckRequest(c, opts) {
				return c.String(http.StatusTooManyRequests, "Too Many Requests")
			}
			return next(c)
		}
	}
}

// throttleEntry tracks one key's per-second limiter and per-minute counter
type throttleEntry struct {
	perSecond   *rate.Limiter
	minuteStart time.Time
	minuteCount int
	lastAccess  time.Time
}

// MemoryThrottler is an in-memory Throttler capability combining a
// per-second token bucket with a fixed per-minute window counter.
type MemoryThrottler struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
}

// NewMemoryThrottler creates a new in-memory throttler
func NewMemoryThrottler() *MemoryThrottler {
	return &MemoryThrottler{
		entries: make(map[string]*throttleEntry),
	}
}

// CheckRequest reports whether the request is inside both burst limits.
func (t *MemoryThrottler) CheckRequest(c Context, opts *ThrottleOptions) bool {
	if opts == nil {
		opts = DefaultThrottleOptions()
	}

	key := c.RealIP()
	if opts.KeyFunc != nil {
		key = opts.KeyFunc(c)
	}

	perSecond := opts.MaxRequestsPerSecond
	if perSecond <= 0 {
		perSecond = DefaultThrottleOptions().MaxRequestsPerSecond
	}

	now := time.Now()

	t.mu.Lock()
	entry, exists := t.entries[key]
	if !exists {
		entry = &throttleEntry{
			perSecond:   rate.NewLimiter(rate.Limit(perSecond), perSecond),
			minuteStart: now,
		}
		t.entries[key] = entry
	}
	entry.lastAccess = now

	allowed := entry.perSecond.AllowN(now, 1)

	if allowed && opts.MaxRequestsPerMinute > 0 {
		if now.Sub(entry.minuteStart) >= time.Minute {
			entry.minuteStart = now
			entry.minuteCount = 0
		}
		if entry.minuteCount >= opts.MaxRequestsPerMinute {
			allowed = false
		} else {
			entry.minuteCount++
		}
	}
	t.mu.Unlock()

	return allowed
}

// Reset clears the throttle state for a key
func (t *MemoryThrottler) Reset(key string) {
	t.mu.Lock()
	delete(t.entries, key)
	t.mu.Unlock()
}
