package node

import (
	"sync"
	"time"
)

type timerFactory func(time.Duration) <-chan time.Time

// ControlTimer paces the tick loop. It signals tickCh once per interval and
// waits for the signal to be consumed before arming the next interval, so a
// slow tick delays the following one instead of piling them up.
type ControlTimer struct {
	timerFactory timerFactory
	tickCh       chan struct{} //sends a signal to listening process
	shutdownCh   chan struct{} //receives instruction to exit Run loop
	shutdownOnce sync.Once
}

// NewControlTimer ...
func NewControlTimer(timerFactory timerFactory) *ControlTimer {
	return &ControlTimer{
		timerFactory: timerFactory,
		tickCh:       make(chan struct{}),
		shutdownCh:   make(chan struct{}),
	}
}

// NewFixedControlTimer returns a ControlTimer backed by time.After.
func NewFixedControlTimer() *ControlTimer {
	return NewControlTimer(time.After)
}

// Run emits ticks every interval until Shutdown is called.
func (c *ControlTimer) Run(interval time.Duration) {
	timer := c.timerFactory(interval)
	for {
		select {
		case <-timer:
			select {
			case c.tickCh <- struct{}{}:
			case <-c.shutdownCh:
				return
			}
			timer = c.timerFactory(interval)
		case <-c.shutdownCh:
			return
		}
	}
}

// Shutdown stops Run. It is safe to call more than once.
func (c *ControlTimer) Shutdown() {
	c.shutdownOnce.Do(func() {
		close(c.shutdownCh)
	})
}
