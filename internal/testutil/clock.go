package testutil

import (
	"sync"
	"time"
)

// DeterministicClock provides a thread-safe stepping time source for
// tests. Each call to Now advances by a fixed step, so timestamps (and
// the post ids derived from them) are stable across runs.
//
// Thread-safety: all methods are safe for concurrent use.
type DeterministicClock struct {
	mu   sync.Mutex
	at   time.Time
	step time.Duration

	start time.Time
}

// NewDeterministicClock creates a clock starting at a fixed epoch and
// advancing one second per call.
func NewDeterministicClock() *DeterministicClock {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &DeterministicClock{at: start, start: start, step: time.Second}
}

// Now returns the current time and advances the clock by one step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.at
	c.at = c.at.Add(c.step)
	return now
}

// Peek returns the time the next Now call will return.
func (c *DeterministicClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

// Advance moves the clock forward without consuming a step.
func (c *DeterministicClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

// Reset returns the clock to its starting time. After Reset, the same
// sequence of calls produces the same timestamps.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.start
}
