package simd

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// callbackBreaker stops notifying a callback host after repeated failed
// deliveries. After timeout one trial delivery is let through; its outcome
// closes or reopens the circuit.
type callbackBreaker struct {
	failureThreshold int
	timeout          time.Duration
	now              func() time.Time

	mu       sync.Mutex
	circuits map[string]*circuit
}

type circuit struct {
	state           breakerState
	failureCount    int
	lastStateChange time.Time
}

func newCallbackBreaker(failureThreshold int, timeout time.Duration) *callbackBreaker {
	return &callbackBreaker{
		failureThreshold: failureThreshold,
		timeout:          timeout,
		now:              time.Now,
		circuits:         make(map[string]*circuit),
	}
}

// Allow reports whether a delivery to host may be attempted
func (b *callbackBreaker) Allow(host string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[host]
	if !ok {
		return true
	}
	b.advance(c)
	return c.state != breakerOpen
}

func (b *callbackBreaker) RecordSuccess(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.circuits, host)
}

func (b *callbackBreaker) RecordFailure(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[host]
	if !ok {
		c = &circuit{state: breakerClosed, lastStateChange: b.now()}
		b.circuits[host] = c
	}
	c.failureCount++

	switch c.state {
	case breakerHalfOpen:
		// A failed trial reopens immediately
		c.state = breakerOpen
		c.lastStateChange = b.now()
	case breakerClosed:
		if c.failureCount >= b.failureThreshold {
			c.state = breakerOpen
			c.lastStateChange = b.now()
		}
	}
}

func (b *callbackBreaker) State(host string) breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.circuits[host]
	if !ok {
		return breakerClosed
	}
	b.advance(c)
	return c.state
}

func (b *callbackBreaker) advance(c *circuit) {
	if c.state == breakerOpen && b.now().Sub(c.lastStateChange) >= b.timeout {
		c.state = breakerHalfOpen
		c.lastStateChange = b.now()
	}
}
