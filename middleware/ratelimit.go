package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is the capability behind the rate-limit provider. CheckRequest
// reports whether the request fits inside the configured quota window.
type RateLimiter interface {
	CheckRequest(c Context, opts *RateLimitOptions) bool
}

// RateLimitOptions contains per-route rate limiting options
type RateLimitOptions struct {
	// Window is the quota window the limit applies to
	Window time.Duration
	// MaxRequests is the number of requests allowed per window
	MaxRequests int
	// KeyFunc extracts the limiter key from the request; defaults to RealIP
	KeyFunc func(c Context) string
}

// DefaultRateLimitOptions returns a default rate limit configuration
func DefaultRateLimitOptions() *RateLimitOptions {
	return &RateLimitOptions{
		Window:      time.Minute,
		MaxRequests: 60,
	}
}

// RateLimiterProvider turns declarative rate-limit options into a middleware
// backed by a RateLimiter capability.
type RateLimiterProvider struct {
	limiter RateLimiter
}

// NewRateLimiterProvider creates a new rate limiter provider
func NewRateLimiterProvider(limiter RateLimiter) *RateLimiterProvider {
	return &RateLimiterProvider{limiter: limiter}
}

// GetMiddleware returns a middleware that rejects requests over quota with
// 429 and never invokes the rest of the chain for them.
func (p *RateLimiterProvider) GetMiddleware(opts *RateLimitOptions) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			if !p.limiter.CheckRequest(c, opts) {
				return c.String(http.StatusTooManyRequests, "Too Many Requests")
			}
			return next(c)
		}
	}
}

// limiterEntry holds a rate limiter and its last access time
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// MemoryStore is an in-memory RateLimiter capability using token buckets.
type MemoryStore struct {
	limiters        map[string]*limiterEntry
	mu              sync.Mutex
	cleanup         *time.Ticker
	cleanupInterval time.Duration
	ttl             time.Duration
	stopped         chan struct{}
	stopOnce        sync.Once
}

// MemoryStoreConfig holds configuration for MemoryStore
type MemoryStoreConfig struct {
	CleanupInterval time.Duration
	TTL             time.Duration
}

// DefaultMemoryStoreConfig returns default configuration
func DefaultMemoryStoreConfig() *MemoryStoreConfig {
	return &MemoryStoreConfig{
		CleanupInterval: 1 * time.Minute,
		TTL:             10 * time.Minute,
	}
}

// NewMemoryStore creates a new in-memory rate limiter store
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithConfig(DefaultMemoryStoreConfig())
}

// NewMemoryStoreWithConfig creates a new in-memory rate limiter store with config
func NewMemoryStoreWithConfig(config *MemoryStoreConfig) *MemoryStore {
	if config == nil {
		config = DefaultMemoryStoreConfig()
	}

	store := &MemoryStore{
		limiters:        make(map[string]*limiterEntry),
		cleanup:         time.NewTicker(config.CleanupInterval),
		cleanupInterval: config.CleanupInterval,
		ttl:             config.TTL,
		stopped:         make(chan struct{}),
	}

	go store.cleanupRoutine()

	return store
}

// CheckRequest reports whether the request is inside its quota window.
func (s *MemoryStore) CheckRequest(c Context, opts *RateLimitOptions) bool {
	if opts == nil {
		opts = DefaultRateLimitOptions()
	}

	key := c.RealIP()
	if opts.KeyFunc != nil {
		key = opts.KeyFunc(c)
	}

	window := opts.Window
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := opts.MaxRequests
	if maxRequests <= 0 {
		maxRequests = DefaultRateLimitOptions().MaxRequests
	}

	now := time.Now()

	s.mu.Lock()
	entry, exists := s.limiters[key]
	if !exists {
		// Spread the window quota evenly, allowing the full quota as burst.
		entry = &limiterEntry{
			limiter:    rate.NewLimiter(rate.Limit(float64(maxRequests)/window.Seconds()), maxRequests),
			lastAccess: now,
		}
		s.limiters[key] = entry
	} else {
		entry.lastAccess = now
	}
	s.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Reset resets the rate limiter for a key
func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	delete(s.limiters, key)
	s.mu.Unlock()
}

// Size returns the current number of limiters in the store
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// Stop stops the cleanup routine
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		s.cleanup.Stop()
		close(s.stopped)
	})
}

// cleanupRoutine periodically cleans up unused limiters
func (s *MemoryStore) cleanupRoutine() {
	for {
		select {
		case <-s.cleanup.C:
			s.performCleanup()
		case <-s.stopped:
			return
		}
	}
}

// performCleanup removes expired limiters
func (s *MemoryStore) performCleanup() {
	now := time.Now()

	s.mu.Lock()
	for key, entry := range s.limiters {
		if now.Sub(entry.lastAccess) > s.ttl {
			delete(s.limiters, key)
		}
	}
	s.mu.Unlock()
}
