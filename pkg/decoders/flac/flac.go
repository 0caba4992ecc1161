// Package flac adapts github.com/mewkiz/flac (pure Go FLAC decode and
// metadata access) to the engine's Decoder interface.
package flac

import (
	"fmt"
	"io"
	"strings"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"

	"github.com/drgolem/audioengine/pkg/types"
)

// Decoder decodes a FLAC file to interleaved stereo float32 PCM.
type Decoder struct {
	stream   *flac.Stream
	rate     int
	channels int
	bps      int
	tags     types.Tags
}

// Open parses the FLAC stream header and Vorbis-comment metadata block.
func Open(fileName string) (*Decoder, error) {
	stream, err := flac.ParseFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("flac: parse: %w", err)
	}

	info := stream.Info
	return &Decoder{
		stream:   stream,
		rate:     int(info.SampleRate),
		channels: int(info.NChannels),
		bps:      int(info.BitsPerSample),
		tags:     readTags(stream.Metadata),
	}, nil
}

func readTags(blocks []*meta.Block) types.Tags {
	var t types.Tags
	for _, b := range blocks {
		vc, ok := b.Body.(*meta.VorbisComment)
		if !ok {
			continue
		}
		for _, kv := range vc.Tags {
			switch strings.ToUpper(kv[0]) {
			case "ARTIST":
				t.Artist = kv[1]
			case "ALBUM":
				t.Album = kv[1]
			case "TITLE":
				t.Title = kv[1]
			}
		}
	}
	return t
}

// SampleRate returns the stream's native sample rate.
func (d *Decoder) SampleRate() int { return d.rate }

// Tags returns the Vorbis-comment metadata read at open time.
func (d *Decoder) Tags() types.Tags { return d.tags }

// Decode returns the next block of interleaved stereo float32 PCM,
// normalizing bit depth to the output range by shifting to 16 bits then
// dividing by 32768.0, matching the WAV and MP3 adapters.
func (d *Decoder) Decode() ([]float32, error) {
	frame, err := d.stream.ParseNext()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("flac: decode: %w", err)
	}

	nSamples := int(frame.Subframes[0].NSamples)
	out := make([]float32, 0, nSamples*2)

	for i := 0; i < nSamples; i++ {
		for ch := 0; ch < 2; ch++ {
			srcCh := ch
			if d.channels == 1 {
				srcCh = 0
			}
			sample := frame.Subframes[srcCh].Samples[i]
			switch {
			case d.bps > 16:
				sample >>= uint(d.bps - 16)
			case d.bps < 16:
				sample <<= uint(16 - d.bps)
			}
			out = append(out, float32(sample)/32768.0)
		}
	}
	return out, nil
}

// Close releases the underlying file handle.
func (d *Decoder) Close() error {
	return d.stream.Close()
}
