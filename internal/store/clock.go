package store

import (
	"sync"
	"sync/atomic"
)

// seqClock hands out the seq numbers that order definitions and checks.
// It resumes after the highest seq already stored, so list order survives
// a reopen and never depends on wall time.
//
// A writer holds the clock from reserve to release. The reserved seq only
// becomes current when the write commits, so a failed write leaves no gap.
type seqClock struct {
	mu   sync.Mutex
	last atomic.Int64
}

func resumeClock(last int64) *seqClock {
	c := &seqClock{}
	c.last.Store(last)
	return c
}

// reserve locks the clock and returns the following seq. Every reserve
// must be paired with a release.
func (c *seqClock) reserve() int64 {
	c.mu.Lock()
	return c.last.Load() + 1
}

// release unlocks the clock, advancing it to seq when committed is true.
func (c *seqClock) release(seq int64, committed bool) {
	if committed {
		c.last.Store(seq)
	}
	c.mu.Unlock()
}

// current is the most recently committed seq; 0 for an empty store.
func (c *seqClock) current() int64 { return c.last.Load() }
