// Package sink implements the backpressured sink that hands PCM chunks
// from the decode pipeline to the shared ring buffer, suspending the
// calling goroutine while the buffer is full instead of ever blocking the
// device thread.
package sink

import (
	"context"

	"github.com/drgolem/audioengine/pkg/ringbuffer"
	"github.com/drgolem/audioengine/pkg/wake"
)

// Sink delivers PcmChunks into a ring buffer, waiting on a WakeSignal when
// the buffer has no room. A Sink instance belongs to exactly one decode
// session.
type Sink struct {
	ring *ringbuffer.Ring[float32]
	wake *wake.Signal
}

// New binds a Sink to the ring buffer producer end and the WakeSignal the
// device thread notifies after each drain.
func New(ring *ringbuffer.Ring[float32], wakeSignal *wake.Signal) *Sink {
	return &Sink{ring: ring, wake: wakeSignal}
}

// Send delivers chunk to the ring buffer in full, splitting it across
// however many buffer-has-space windows are needed. It returns early with
// ctx.Err() if ctx is cancelled (the decode driver cancels ctx when the
// track's CancelHandle fires), and otherwise blocks only on the
// WakeSignal, never on a lock held by the device thread.
func (s *Sink) Send(ctx context.Context, chunk []float32) error {
	for len(chunk) > 0 {
		n := s.ring.WriteAvailable(chunk)
		chunk = chunk[n:]
		if len(chunk) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake.Chan():
		}
	}
	return nil
}
