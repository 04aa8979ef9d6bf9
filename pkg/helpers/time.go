package helpers

import (
	"sync"
	"time"
)

// Clock supplies UTC epoch milliseconds.
type Clock interface {
	NowMillis() int64
}

type SystemClock struct{}

func (SystemClock) NowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

// ManualClock is a settable clock for tests and seeding.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(millis int64) {
	c.mu.Lock()
	c.now = millis
	c.mu.Unlock()
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d.Milliseconds()
	c.mu.Unlock()
}

// MillisToTime converts epoch millis to a UTC time.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
