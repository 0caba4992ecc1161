package playback

import "sync"

// CancelHandle is a one-shot trigger that tells a running decode task to
// terminate at its next suspension point. Firing it is non-blocking and
// safe to call from the controller context while the decode thread holds
// no lock.
type CancelHandle struct {
	once sync.Once
	done chan struct{}
}

// NewCancelHandle returns an armed, unfired handle.
func NewCancelHandle() *CancelHandle {
	return &CancelHandle{done: make(chan struct{})}
}

// Fire trips the handle. Safe to call more than once or concurrently;
// only the first call has effect.
func (c *CancelHandle) Fire() {
	c.once.Do(func() { close(c.done) })
}

// Done returns a channel that's closed once Fire has been called.
func (c *CancelHandle) Done() <-chan struct{} {
	return c.done
}

// Fired reports whether Fire has already been called, without blocking.
func (c *CancelHandle) Fired() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
