// Package resample wraps github.com/zaf/resample (Go bindings to libsoxr)
// as a stateful per-track sample-rate converter bound to a fixed
// (origRate, destRate) pair, bypassing conversion entirely when the rates
// already match.
package resample

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	soxr "github.com/zaf/resample"
)

const channels = 2

// Resampler converts interleaved stereo float32 PCM from one sample rate
// to another, retaining internal sinc-filter phase across calls so a
// stream of chunks resamples seamlessly. A single instance belongs to
// exactly one decode session; it is not safe for concurrent use.
type Resampler struct {
	bypass bool
	out    bytes.Buffer
	soxr   *soxr.Resampler
}

// New constructs a Resampler from origRate to destRate. When the rates are
// equal, Process returns its input unchanged without invoking soxr.
func New(origRate, destRate int) (*Resampler, error) {
	r := &Resampler{}
	if origRate == destRate {
		r.bypass = true
		return r, nil
	}

	s, err := soxr.New(&r.out, float64(origRate), float64(destRate), channels, soxr.F32, soxr.HighQ)
	if err != nil {
		return nil, fmt.Errorf("resample: new: %w", err)
	}
	r.soxr = s
	return r, nil
}

// Process converts one chunk of interleaved stereo float32 PCM, returning
// the resampled chunk. The returned slice may be shorter or longer than
// the input and may be empty if soxr is still buffering internally.
func (r *Resampler) Process(chunk []float32) ([]float32, error) {
	if r.bypass || len(chunk) == 0 {
		return chunk, nil
	}

	raw := floatsToBytes(chunk)
	if _, err := r.soxr.Write(raw); err != nil {
		return nil, fmt.Errorf("resample: write: %w", err)
	}

	out := bytesToFloats(r.out.Bytes())
	r.out.Reset()
	return out, nil
}

// Close flushes any samples soxr is still holding internally and releases
// its resources.
func (r *Resampler) Close() ([]float32, error) {
	if r.bypass || r.soxr == nil {
		return nil, nil
	}
	if err := r.soxr.Close(); err != nil {
		return nil, fmt.Errorf("resample: close: %w", err)
	}
	out := bytesToFloats(r.out.Bytes())
	r.out.Reset()
	return out, nil
}

func floatsToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

func bytesToFloats(raw []byte) []float32 {
	n := len(raw) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}
