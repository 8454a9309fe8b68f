package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a DeterministicClock reports.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// DeterministicClock is a fake wall clock for tests.
//
// Every call to Now returns Epoch advanced by one more step, so journal
// timestamps are strictly increasing and identical across runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	step time.Duration
	n    int64
}

// NewDeterministicClock creates a clock advancing one second per call.
//
// The first call to Now() returns Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{step: time.Second}
}

// Now returns the next instant.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Calls returns how many times Now has been called.
func (c *DeterministicClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock. After Reset(), the next call to Now() returns Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
