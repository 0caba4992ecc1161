// Package wake provides a single-slot wake notifier used to break the
// cyclic wait between a suspended producer and the consumer that makes
// room for it again. It plays the same role as Rust's futures::task::
// AtomicWaker in the original implementation this engine is modeled on,
// expressed with a capacity-1 channel instead of a registered waker.
package wake

// Signal is a single-slot wake notifier. Signal() never blocks and
// coalesces multiple notifications before they are observed: at most one
// pending wake is ever stored. Wait() blocks until a wake is delivered.
//
// Intended usage: the device thread calls Signal() after draining samples;
// the sink, suspended because the ring buffer was full, calls Wait() (or
// selects on Chan()) to resume.
type Signal struct {
	ch chan struct{}
}

// New creates an unsignaled wake notifier.
func New() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Signal wakes a waiter, if any is registered, or leaves a pending wake for
// the next call to Wait/Chan to observe. Safe to call from the device
// thread without blocking.
func (s *Signal) Signal() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Chan returns the channel to select on. Receiving from it consumes the
// pending wake.
func (s *Signal) Chan() <-chan struct{} {
	return s.ch
}

// Wait blocks until a wake is delivered.
func (s *Signal) Wait() {
	<-s.ch
}
