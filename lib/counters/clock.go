package counters

import (
	"sync/atomic"
	"time"
)

// --------------------------------------------------------------------------
// Clock Interface Definition
// --------------------------------------------------------------------------

// IEpochClock supplies milliseconds since the Unix epoch. The Manager uses
// it to stamp and test free-for-reuse deadlines; tests supply a controlled
// implementation to drive deadline expiry deterministically.
type IEpochClock interface {
	// TimeMillis returns the current time in milliseconds since the epoch.
	TimeMillis() int64
}

// --------------------------------------------------------------------------
// Implementations
// --------------------------------------------------------------------------

// SystemEpochClock reads the wall clock on every call.
type SystemEpochClock struct{}

func (SystemEpochClock) TimeMillis() int64 {
	return time.Now().UnixMilli()
}

// CachedEpochClock returns a value that is only updated when explicitly
// set or advanced. Useful for a duty-cycle owner that samples the wall
// clock once per cycle, and for tests.
//
// Thread-safety: Update/Advance and TimeMillis may be called concurrently.
type CachedEpochClock struct {
	ms atomic.Int64
}

// NewCachedEpochClock creates a cached clock primed with the given time.
func NewCachedEpochClock(nowMs int64) *CachedEpochClock {
	c := &CachedEpochClock{}
	c.ms.Store(nowMs)
	return c
}

func (c *CachedEpochClock) TimeMillis() int64 {
	return c.ms.Load()
}

// Update sets the cached time.
func (c *CachedEpochClock) Update(nowMs int64) {
	c.ms.Store(nowMs)
}

// Advance moves the cached time forward by deltaMs.
func (c *CachedEpochClock) Advance(deltaMs int64) {
	c.ms.Add(deltaMs)
}
