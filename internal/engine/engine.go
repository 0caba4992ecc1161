// Package engine wires the decode pipeline together and exposes the
// controller command surface: init, play, pause, enqueue, enqueue_next,
// import_m3u, skip, previous, skip_to, and the read-only accessors.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/drgolem/audioengine/internal/device"
	"github.com/drgolem/audioengine/internal/playback"
	"github.com/drgolem/audioengine/internal/sink"
	"github.com/drgolem/audioengine/pkg/decoders"
	"github.com/drgolem/audioengine/pkg/m3u"
	"github.com/drgolem/audioengine/pkg/ringbuffer"
	"github.com/drgolem/audioengine/pkg/resample"
	"github.com/drgolem/audioengine/pkg/types"
	"github.com/drgolem/audioengine/pkg/wake"
)

// ringSeconds is the ring buffer's requested capacity in seconds of stereo
// audio at the output rate. ringbuffer.New rounds the resulting 384000
// samples up to a power of two, so the buffer holds 524288 samples
// (about 5.5 s).
const ringSeconds = 4

// pollInterval is how long the decode driver rests when the queue is
// empty, per the decode driver's documented loop.
const pollInterval = 100 * time.Millisecond

// Config configures a new Engine.
type Config struct {
	Device device.Config
}

// DefaultConfig returns the engine's default device configuration.
func DefaultConfig() Config {
	return Config{Device: device.DefaultConfig()}
}

// Engine is the process-wide playback engine singleton. Construct one
// with New and call Init (or Play, which inits implicitly) before issuing
// any other command.
type Engine struct {
	cfg    Config
	log    *slog.Logger
	state  *playback.State
	ring   *ringbuffer.Ring[float32]
	wake   *wake.Signal
	device *device.Device

	initOnce sync.Once
	initErr  error

	statusMu sync.Mutex
	status   types.PlaybackStatus
}

// New constructs an Engine. logger may be nil, in which case
// slog.Default() is used.
func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:   cfg,
		log:   logger,
		state: playback.New(),
		ring:  ringbuffer.New[float32](device.OutputRate * ringSeconds * device.OutputChannels),
		wake:  wake.New(),
	}
}

// Init establishes the device, ring buffer, and decode thread. Idempotent:
// calling it more than once has no further effect.
func (e *Engine) Init() error {
	e.initOnce.Do(func() {
		d := device.New(e.ring, e.wake, e.cfg.Device)
		if err := d.Start(); err != nil {
			e.initErr = fmt.Errorf("engine: init device: %w", err)
			return
		}
		e.device = d
		e.state.Init(d)
		go e.decodeDriverLoop()
	})
	return e.initErr
}

// Play unpauses the device, initializing the engine first if needed.
func (e *Engine) Play() error {
	if !e.state.Initialized() {
		if err := e.Init(); err != nil {
			return err
		}
	}
	return e.device.Play()
}

// Pause pauses the device.
func (e *Engine) Pause() error {
	if e.device == nil {
		return nil
	}
	return e.device.Pause()
}

// Enqueue appends path to the queue.
func (e *Engine) Enqueue(path string) {
	e.state.Enqueue(path)
}

// EnqueueNext inserts path at the head of the queue, interrupting the
// current track.
func (e *Engine) EnqueueNext(path string) {
	e.state.EnqueueNext(path)
}

// ImportM3U resolves every path entry in the playlist file against its
// own directory and enqueues each in order.
func (e *Engine) ImportM3U(playlistPath string) error {
	paths, err := m3u.ParseFile(playlistPath)
	if err != nil {
		return fmt.Errorf("engine: import m3u: %w", err)
	}
	for _, p := range paths {
		e.state.Enqueue(p)
	}
	return nil
}

// Skip aborts the current track and flushes the device buffer.
func (e *Engine) Skip() {
	e.state.Skip()
}

// Previous moves the current and last-played tracks back onto the queue
// head, aborts the current track, and flushes the device buffer.
func (e *Engine) Previous() {
	e.state.Previous()
}

// SkipTo navigates to an absolute playlist index.
func (e *Engine) SkipTo(index int) {
	e.state.SkipTo(index)
}

// CurrentPlaying returns the current track's path, or false if there is
// none. A track stays current after it finishes decoding; it is replaced
// only when the decode driver advances to another track, or cleared by a
// navigation command, so the last track of the queue remains current
// after it ends.
func (e *Engine) CurrentPlaying() (string, bool) {
	return e.state.CurrentPath()
}

// CurrentTag returns the current track's tags, or false if there is none
// (see CurrentPlaying for how long a track stays current).
func (e *Engine) CurrentTag() (types.Tags, bool) {
	return e.state.CurrentTags()
}

// CurrentID returns the zero-based index of the current track.
func (e *Engine) CurrentID() int {
	return e.state.CurrentIndex()
}

// Playlist returns an ordered snapshot of history ++ current ++ upcoming,
// reopening each non-current entry to read its tags.
func (e *Engine) Playlist() []playback.Entry {
	return e.state.Playlist(e.readTags)
}

// Changed returns true exactly once after each advance, then false until
// the next one.
func (e *Engine) Changed() bool {
	return e.state.ConsumeChanged()
}

// Status returns a snapshot of the currently decoding track: its file
// name, native sample rate, and how many sample frames the decoder has
// produced for it so far (counted before resampling and before the sink).
// The zero value is returned when nothing has played yet.
func (e *Engine) Status() types.PlaybackStatus {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.status
}

func (e *Engine) resetStatus(fileName string, sampleRate int) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status = types.PlaybackStatus{FileName: fileName, SampleRate: sampleRate}
}

func (e *Engine) addPlayedSamples(n int) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.PlayedSamples += uint64(n)
	if e.status.SampleRate > 0 {
		e.status.ElapsedTime = time.Duration(e.status.PlayedSamples) * time.Second / time.Duration(e.status.SampleRate)
	}
}

func (e *Engine) readTags(path string) (types.Tags, error) {
	dec, err := decoders.Open(path)
	if err != nil {
		return types.Tags{}, err
	}
	defer dec.Close()
	return dec.Tags(), nil
}

// decodeDriverLoop is the long-running decode thread: it repeatedly picks
// up the next queued track, runs it through decode -> resample -> sink,
// and advances on completion or cancellation.
func (e *Engine) decodeDriverLoop() {
	for {
		next, ok := e.state.PeekNext()
		if !ok {
			time.Sleep(pollInterval)
			continue
		}

		dec, err := decoders.Open(next)
		if err != nil {
			e.log.Warn("engine: failed to open track, dropping", "path", next, "error", err)
			e.state.DropCurrentSlot()
			continue
		}

		rs, err := resample.New(dec.SampleRate(), device.OutputRate)
		if err != nil {
			e.log.Warn("engine: failed to build resampler, dropping", "path", next, "error", err)
			dec.Close()
			e.state.DropCurrentSlot()
			continue
		}

		cancel := playback.NewCancelHandle()
		ctx, cancelCtx := context.WithCancel(context.Background())
		go func() {
			select {
			case <-cancel.Done():
			case <-ctx.Done():
			}
			cancelCtx()
		}()

		e.state.Advance(&playback.Current{Path: next, Tags: dec.Tags(), Cancel: cancel})
		e.resetStatus(next, dec.SampleRate())

		e.runSession(ctx, next, dec, rs)

		cancel.Fire()
		cancelCtx()
		dec.Close()
	}
}

// runSession drives one track's decode -> resample -> sink pipeline until
// end of stream, a decode error, or cancellation. It always closes rs
// before returning, discarding any buffered tail on the cancellation
// path since the track is being abandoned, not finished.
func (e *Engine) runSession(ctx context.Context, path string, dec types.Decoder, rs *resample.Resampler) {
	snk := sink.New(e.ring, e.wake)
	cancelled := false

	defer func() {
		tail, err := rs.Close()
		if err != nil {
			e.log.Warn("engine: resampler close failed", "path", path, "error", err)
			return
		}
		if !cancelled && len(tail) > 0 {
			_ = snk.Send(ctx, tail)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			cancelled = true
			return
		default:
		}

		chunk, err := dec.Decode()
		if len(chunk) > 0 {
			e.addPlayedSamples(len(chunk) / device.OutputChannels)
			resampled, rsErr := rs.Process(chunk)
			if rsErr != nil {
				e.log.Warn("engine: resample error", "path", path, "error", rsErr)
				return
			}
			if sendErr := snk.Send(ctx, resampled); sendErr != nil {
				cancelled = true
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				e.log.Warn("engine: decode error mid-stream", "path", path, "error", err)
			}
			return
		}
	}
}
