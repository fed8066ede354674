package shared

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPRequestRateLimiter spaces outbound requests to a single upstream
type HTTPRequestRateLimiter struct {
	limiter      *rate.Limiter
	requestCount int64
}

// NewHTTPRequestRateLimiter creates a new rate limiter with the specified minimum delay
func NewHTTPRequestRateLimiter(minimumDelay time.Duration) *HTTPRequestRateLimiter {
	return &HTTPRequestRateLimiter{
		limiter: rate.NewLimiter(rate.Every(minimumDelay), 1),
	}
}

// Wait blocks until the next request may be sent or ctx is done
func (l *HTTPRequestRateLimiter) Wait(ctx context.Context) error {
	reservation := l.limiter.Reserve()
	delay := reservation.Delay()
	if delay > 0 {
		logrus.WithFields(logrus.Fields{
			"component":       "HTTPRequestRateLimiter",
			"remaining_delay": delay,
			"request_count":   atomic.LoadInt64(&l.requestCount) + 1,
		}).Debug("Enforcing rate limit delay")

		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			reservation.Cancel()
			return ctx.Err()
		}
	}

	atomic.AddInt64(&l.requestCount, 1)
	return nil
}

// GetRequestCount returns the total number of requests processed
func (l *HTTPRequestRateLimiter) GetRequestCount() int64 {
	return atomic.LoadInt64(&l.requestCount)
}

// KeyedRateLimiter hands out one token bucket per key (client IP, user id)
type KeyedRateLimiter struct {
	mutex    sync.Mutex
	limiters map[string]*keyedEntry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
}

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedRateLimiter allows perMinute requests per key with a burst of the same size
func NewKeyedRateLimiter(perMinute int) *KeyedRateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &KeyedRateLimiter{
		limiters: make(map[string]*keyedEntry),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idleTTL:  10 * time.Minute,
	}
}

// Allow consumes one token for key and reports whether the request may proceed
func (k *KeyedRateLimiter) Allow(key string) bool {
	k.mutex.Lock()
	defer k.mutex.Unlock()

	entry, exists := k.limiters[key]
	if !exists {
		entry = &keyedEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// Prune drops buckets that have been idle longer than the idle TTL
func (k *KeyedRateLimiter) Prune() int {
	k.mutex.Lock()
	defer k.mutex.Unlock()

	removed := 0
	for key, entry := range k.limiters {
		if time.Since(entry.lastSeen) > k.idleTTL {
			delete(k.limiters, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked keys
func (k *KeyedRateLimiter) Size() int {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	return len(k.limiters)
}
