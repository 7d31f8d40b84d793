package runtime

import (
	"sync"
	"time"
)

// Countdown drives the rate-limit cooldown: a one-second ticker that
// re-renders navigation state until the deadline passes, then clears
// itself. Purely advisory; the submit gate checks the deadline directly.
type Countdown struct {
	mu   sync.Mutex
	stop chan struct{}
}

// NewCountdown creates an idle countdown.
func NewCountdown() *Countdown {
	return &Countdown{}
}

// Start begins ticking once per second until now() reaches deadline.
// onTick fires every tick with the remaining time; onDone fires once when
// the deadline passes. A running countdown is replaced.
func (c *Countdown) Start(now func() time.Time, deadline time.Time, onTick func(remaining time.Duration), onDone func()) {
	c.Stop()

	c.mu.Lock()
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				remaining := deadline.Sub(now())
				if remaining <= 0 {
					c.clear(stop)
					onDone()
					return
				}
				onTick(remaining)
			}
		}
	}()
}

// Stop cancels a running countdown, if any.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// clear resets the stop channel only if it still belongs to this run.
func (c *Countdown) clear(stop chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == stop {
		c.stop = nil
	}
}
