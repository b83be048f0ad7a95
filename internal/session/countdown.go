package session

import (
	"sync"
	"time"
)

// Countdown ticks once per second toward zero and fires its expiry callback
// exactly once. Every state transition away from the state that armed a
// countdown must Stop it, otherwise the old timer keeps ticking into the new
// state.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	expired   bool
	stopped   bool
	done      chan struct{}

	onTick   func(remaining int)
	onExpire func()
}

// NewCountdown arms a countdown at the given number of seconds. Both
// callbacks may be nil. The countdown does not run until Start is called;
// tests drive it by calling Tick directly.
func NewCountdown(seconds int, onTick func(int), onExpire func()) *Countdown {
	return &Countdown{
		remaining: seconds,
		done:      make(chan struct{}),
		onTick:    onTick,
		onExpire:  onExpire,
	}
}

// Start launches the one-second tick loop.
func (c *Countdown) Start() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				c.Tick()
			}
		}
	}()
}

// Tick advances the countdown by one second. Callbacks run outside the
// internal lock so they are free to call back into the owning controller.
func (c *Countdown) Tick() {
	c.mu.Lock()
	if c.stopped || c.expired {
		c.mu.Unlock()
		return
	}
	c.remaining--
	remaining := c.remaining
	expired := remaining <= 0
	if expired {
		c.expired = true
		c.stopped = true
		close(c.done)
	}
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(remaining)
	}
	if expired && c.onExpire != nil {
		c.onExpire()
	}
}

// Stop halts the countdown without firing expiry. Safe to call more than
// once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.done)
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
