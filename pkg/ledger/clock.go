package ledger

import "sync"

// LogicalClock is a Lamport clock: a single monotonically non-decreasing
// counter, updated on every local event and on every message arrival.
type LogicalClock interface {
	// Tick advances the clock for a local event and returns the new value.
	Tick() uint64

	// Observe updates the clock against a timestamp carried by an inbound
	// message, following the standard Lamport rule: L <- max(L, t) + 1.
	Observe(t uint64) uint64

	// Tock returns the current value without advancing the clock.
	Tock() uint64
}

// lamportClock is the default LogicalClock implementation, a single
// integer protected by its own mutex so it can be read and advanced
// concurrently by the submitter goroutine and every inbound handler.
type lamportClock struct {
	mutex *sync.Mutex
	value uint64
}

// NewLogicalClock creates a clock starting at zero.
func NewLogicalClock() LogicalClock {
	return &lamportClock{mutex: &sync.Mutex{}}
}

func (c *lamportClock) Tick() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.value++
	return c.value
}

func (c *lamportClock) Observe(t uint64) uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if t > c.value {
		c.value = t
	}
	c.value++
	return c.value
}

func (c *lamportClock) Tock() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.value
}
