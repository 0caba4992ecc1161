// Package wav adapts github.com/youpy/go-wav to the engine's Decoder
// interface, normalizing 16-bit PCM to interleaved stereo float32.
package wav

import (
	"fmt"
	"io"
	"os"

	gowav "github.com/youpy/go-wav"

	"github.com/drgolem/audioengine/pkg/types"
)

const chunkFrames = 4096

// Decoder reads a WAV file and yields interleaved stereo float32 PCM.
type Decoder struct {
	file     *os.File
	reader   *gowav.Reader
	rate     int
	channels int
	bps      int
}

// Open reads the WAV header and returns a ready-to-decode Decoder.
func Open(fileName string) (*Decoder, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("wav: open: %w", err)
	}

	reader := gowav.NewReader(file)
	format, err := reader.Format()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("wav: read format: %w", err)
	}

	if format.AudioFormat != gowav.AudioFormatPCM {
		file.Close()
		return nil, fmt.Errorf("wav: unsupported audio format %d (only PCM)", format.AudioFormat)
	}

	return &Decoder{
		file:     file,
		reader:   reader,
		rate:     int(format.SampleRate),
		channels: int(format.NumChannels),
		bps:      int(format.BitsPerSample),
	}, nil
}

// SampleRate returns the container's sample rate.
func (d *Decoder) SampleRate() int { return d.rate }

// Tags returns empty Tags: plain WAV carries no standard metadata chunk
// this engine reads.
func (d *Decoder) Tags() types.Tags { return types.Tags{} }

// Decode returns the next chunk of interleaved stereo float32 PCM, up to
// chunkFrames frames, normalizing source samples by dividing by 32768.0.
func (d *Decoder) Decode() ([]float32, error) {
	samples, err := d.reader.ReadSamples(chunkFrames)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("wav: decode: %w", err)
	}
	if len(samples) == 0 {
		return nil, io.EOF
	}

	out := make([]float32, 0, len(samples)*2)
	for _, s := range samples {
		l := s.Values[0]
		r := l
		if d.channels > 1 && len(s.Values) > 1 {
			r = s.Values[1]
		}
		out = append(out, float32(l)/32768.0, float32(r)/32768.0)
	}
	return out, nil
}

// Close releases the underlying file handle.
func (d *Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
