package session

import (
	"sync"
	"time"
)

// Difficulty time limits in seconds.
const (
	LimitEasy   = 30
	LimitNormal = 45
	LimitHard   = 60
)

// LimitForDifficulty maps a difficulty label to its per-question time
// limit. Unknown labels fall back to normal.
func LimitForDifficulty(difficulty string) int {
	switch difficulty {
	case "easy":
		return LimitEasy
	case "hard":
		return LimitHard
	default:
		return LimitNormal
	}
}

// TickSource drives the 1 Hz countdown tick. Injectable for tests.
type TickSource interface {
	// TickEvery calls fn repeatedly at interval d until the returned stop
	// function runs.
	TickEvery(d time.Duration, fn func()) (stop func())
}

type realTicks struct{}

func (realTicks) TickEvery(d time.Duration, fn func()) func() {
	t := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}

// RealTicks returns the wall-clock tick source.
func RealTicks() TickSource { return realTicks{} }

// Countdown is the per-question timer. Each Reset starts a new generation;
// ticks and the expiry signal from older generations are ignored, and the
// expiry callback fires exactly once per generation.
type Countdown struct {
	source   TickSource
	onExpire func()

	mu        sync.Mutex
	gen       uint64
	remaining int
	stop      func()
	expired   bool
}

// NewCountdown creates a stopped countdown. onExpire runs on the tick
// goroutine when a generation reaches zero.
func NewCountdown(source TickSource, onExpire func()) *Countdown {
	if source == nil {
		source = RealTicks()
	}
	return &Countdown{source: source, onExpire: onExpire}
}

// Reset starts a fresh generation counting down from seconds.
func (c *Countdown) Reset(seconds int) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.remaining = seconds
	c.expired = false
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if seconds <= 0 {
		c.expired = true
		c.mu.Unlock()
		if c.onExpire != nil {
			c.onExpire()
		}
		return
	}
	c.stop = c.source.TickEvery(time.Second, func() { c.tick(gen) })
	c.mu.Unlock()
}

func (c *Countdown) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.expired {
		c.mu.Unlock()
		return
	}
	c.remaining--
	if c.remaining > 0 {
		c.mu.Unlock()
		return
	}
	c.remaining = 0
	c.expired = true
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.mu.Unlock()

	if c.onExpire != nil {
		c.onExpire()
	}
}

// Remaining returns the seconds left in the current generation.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Expired reports whether the current generation has run out.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Stop halts the countdown without expiring it.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}
