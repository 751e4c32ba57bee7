package testutil

import (
	"sync"
	"time"
)

// DefaultStart is the instant a FakeClock starts at when none is given:
// 2023-11-14T22:13:20Z, epoch millis 1700000000000.
var DefaultStart = time.UnixMilli(1700000000000).UTC()

// FakeClock is a deterministic wall clock for tests.
//
// Each call to Now returns the current instant and then advances it by
// the configured step, so successive orders get distinct, predictable
// creation times.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewFakeClock creates a clock at start that advances by step per Now call.
// A zero start means DefaultStart.
func NewFakeClock(start time.Time, step time.Duration) *FakeClock {
	if start.IsZero() {
		start = DefaultStart
	}
	return &FakeClock{start: start, now: start, step: step}
}

// Now returns the current instant and advances the clock by one step.
// Its signature matches time.Now so it can be passed as a clock function.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Current returns the instant the next Now call will return.
func (c *FakeClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d without consuming a step.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset returns the clock to its start instant.
func (c *FakeClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
