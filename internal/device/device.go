// Package device drives the PortAudio output stream from the shared ring
// buffer. It owns the only goroutine allowed to touch the ring buffer's
// consumer end and must never block on anything but the device write
// itself.
package device

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/drgolem/go-portaudio/portaudio"

	"github.com/drgolem/audioengine/pkg/ringbuffer"
	"github.com/drgolem/audioengine/pkg/wake"
)

// OutputRate and OutputChannels are fixed by the engine's external
// contract: 2-channel interleaved float32 at 48,000 Hz.
const (
	OutputRate     = 48000
	OutputChannels = 2
)

// emptySleep is how long the write loop rests when the ring buffer has
// nothing to drain, to avoid spinning the CPU while the producer fills it.
const emptySleep = 200 * time.Millisecond

// Config configures the output device.
type Config struct {
	DeviceIndex     int
	FramesPerBuffer int
}

// DefaultConfig returns a reasonable default: 512 frames per callback on
// the default output device.
func DefaultConfig() Config {
	return Config{DeviceIndex: -1, FramesPerBuffer: 512}
}

// Device owns the PortAudio output stream and the goroutine that keeps it
// fed from the ring buffer.
type Device struct {
	cfg  Config
	ring *ringbuffer.Ring[float32]
	wake *wake.Signal

	stream  *portaudio.PaStream
	flushCh chan struct{}
	stopCh  chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	paused bool
}

// New constructs a Device bound to ring, the producer-side WakeSignal it
// must fire after every drain, and cfg.
func New(ring *ringbuffer.Ring[float32], wakeSignal *wake.Signal, cfg Config) *Device {
	return &Device{
		cfg:     cfg,
		ring:    ring,
		wake:    wakeSignal,
		flushCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

// Start opens the PortAudio stream, starts it paused, and launches the
// write loop goroutine.
func (d *Device) Start() error {
	outParams := portaudio.PaStreamParameters{
		DeviceIndex:  d.cfg.DeviceIndex,
		ChannelCount: OutputChannels,
		SampleFormat: portaudio.SampleFmtFloat32,
	}

	stream, err := portaudio.NewStream(outParams, float64(OutputRate))
	if err != nil {
		return fmt.Errorf("device: new stream: %w", err)
	}
	if err := stream.Open(d.cfg.FramesPerBuffer); err != nil {
		return fmt.Errorf("device: open stream: %w", err)
	}

	d.stream = stream
	d.paused = true

	d.wg.Add(1)
	go d.run()
	return nil
}

// Play unpauses the output stream.
func (d *Device) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.paused {
		return nil
	}
	if err := d.stream.StartStream(); err != nil {
		return fmt.Errorf("device: start stream: %w", err)
	}
	d.paused = false
	return nil
}

// Pause pauses the output stream; the write loop keeps running (and
// keeps draining the ring buffer) so the producer never blocks.
func (d *Device) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.paused {
		return nil
	}
	if err := d.stream.StopStream(); err != nil {
		return fmt.Errorf("device: stop stream: %w", err)
	}
	d.paused = true
	return nil
}

// RequestFlush asks the write loop to discard all currently buffered
// samples at its next iteration. Non-blocking; coalesces with any
// already-pending flush request. Implements playback.Flusher.
func (d *Device) RequestFlush() {
	select {
	case d.flushCh <- struct{}{}:
	default:
	}
}

// Close stops the write loop and releases the stream.
func (d *Device) Close() error {
	close(d.stopCh)
	d.wg.Wait()

	if d.stream == nil {
		return nil
	}
	if err := d.stream.StopStream(); err != nil {
		slog.Warn("device: stop stream on close", "error", err)
	}
	return d.stream.Close()
}

// run is the write loop described by the device output contract: on an
// empty buffer, rest briefly; check for a pending flush; fill one device
// block sample-by-sample from the ring buffer, writing silence for any
// slot the buffer can't supply; signal the WakeSignal after every block.
func (d *Device) run() {
	defer d.wg.Done()

	blockSamples := d.cfg.FramesPerBuffer * OutputChannels
	samples := make([]float32, blockSamples)
	raw := make([]byte, blockSamples*4)

	for {
		select {
		case <-d.stopCh:
			return
		default:
		}

		if d.ring.IsEmpty() {
			select {
			case <-d.stopCh:
				return
			case <-time.After(emptySleep):
			}
		}

		select {
		case <-d.flushCh:
			d.ring.Drain()
		default:
		}

		for i := range samples {
			v, ok := d.ring.ReadOne()
			if !ok {
				v = 0.0
			}
			samples[i] = v
		}
		floatsToBytes(samples, raw)

		if err := d.stream.Write(d.cfg.FramesPerBuffer, raw); err != nil {
			slog.Error("device: stream write failed", "error", err)
		}

		d.wake.Signal()
	}
}

func floatsToBytes(samples []float32, raw []byte) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(s))
	}
}
