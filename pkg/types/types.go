// Package types holds the shared interfaces and sentinel errors that the
// decoder adapters, ring buffer, and playback core all depend on.
package types

import (
	"errors"
	"time"
)

// Tags holds the subset of metadata the engine surfaces to a controller.
// An empty string means the field is absent; Tags is cloned freely since
// it is a plain value type.
type Tags struct {
	Artist string
	Album  string
	Title  string
}

// Empty reports whether all three fields are unset.
func (t Tags) Empty() bool {
	return t.Artist == "" && t.Album == "" && t.Title == ""
}

// Decoder is implemented by every format-specific adapter (WAV, MP3,
// FLAC, Ogg Opus). A Decoder owns its underlying file handle; Close
// releases it. Decode is called repeatedly by the decode driver until it
// returns an error (io.EOF on a clean end of stream).
type Decoder interface {
	// SampleRate returns the native sample rate of the decoded stream.
	SampleRate() int

	// Tags returns the metadata read when the file was opened.
	Tags() Tags

	// Decode returns the next chunk of interleaved stereo float32 PCM.
	// The returned slice is only valid until the next call to Decode.
	Decode() ([]float32, error)

	// Close releases the underlying file handle and decoder state.
	Close() error
}

// PlaybackStatus is a point-in-time snapshot of the currently decoding
// track, surfaced by the engine's status accessor for observability.
type PlaybackStatus struct {
	FileName      string
	SampleRate    int
	PlayedSamples uint64
	ElapsedTime   time.Duration
}

// Common errors surfaced by the ring buffer and the format dispatcher.
// Callers compare with errors.Is.
var (
	// ErrInsufficientSpace indicates the ring buffer doesn't have enough
	// free slots for the requested write.
	ErrInsufficientSpace = errors.New("insufficient space in ring buffer")

	// ErrInsufficientData indicates the ring buffer has no data available
	// for the requested read.
	ErrInsufficientData = errors.New("insufficient data in ring buffer")

	// ErrUnsupportedFormat is returned by the format dispatcher when a
	// file's detected MIME type maps to no known decoder.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)
