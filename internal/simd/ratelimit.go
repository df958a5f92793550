package simd

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// submitLimiter throttles run submissions per client with a token bucket.
// A non-positive rate disables it.
type submitLimiter struct {
	ratePerSecond int
	now           func() time.Time

	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

type tokenBucket struct {
	capacity   int
	tokens     int
	refillRate int
	lastRefill time.Time
}

func newSubmitLimiter(ratePerSecond int) *submitLimiter {
	return &submitLimiter{
		ratePerSecond: ratePerSecond,
		now:           time.Now,
		buckets:       make(map[string]*tokenBucket),
	}
}

func (l *submitLimiter) enabled() bool {
	return l != nil && l.ratePerSecond > 0
}

// Allow takes one token from the client's bucket
func (l *submitLimiter) Allow(client string) bool {
	if !l.enabled() {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[client]
	if !ok {
		bucket = &tokenBucket{
			capacity:   l.ratePerSecond,
			tokens:     l.ratePerSecond,
			refillRate: l.ratePerSecond,
			lastRefill: now,
		}
		l.buckets[client] = bucket
	}
	bucket.refill(now)

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}
	return false
}

// Remaining returns the tokens left for client, -1 when unlimited
func (l *submitLimiter) Remaining(client string) int {
	if !l.enabled() {
		return -1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	bucket, ok := l.buckets[client]
	if !ok {
		return l.ratePerSecond
	}
	bucket.refill(l.now())
	return bucket.tokens
}

func (b *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	tokensToAdd := int(elapsed.Seconds() * float64(b.refillRate))
	if tokensToAdd > 0 {
		b.tokens += tokensToAdd
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.lastRefill = now
	}
}

// clientKey identifies the submitting client by remote host
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
