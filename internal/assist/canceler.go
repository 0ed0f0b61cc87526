package assist

import (
	"context"
	"sync"
)

// Canceler serializes assistant requests: starting a new one cancels the
// previous in-flight request, so a slow stale response can never land after
// a newer one.
type Canceler struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// Next returns a context for a fresh request, cancelling whichever request
// was running before.
func (c *Canceler) Next(parent context.Context) (context.Context, context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	return ctx, cancel
}

// Stop cancels the in-flight request, if any.
func (c *Canceler) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
