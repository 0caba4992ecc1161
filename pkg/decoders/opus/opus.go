// Package opus adapts an Ogg Opus file to the engine's Decoder interface,
// pairing the internal Ogg container demuxer with github.com/drgolem/go-opus
// for per-packet frame decode.
package opus

import (
	"fmt"
	"io"
	"os"
	"strings"

	gopus "github.com/drgolem/go-opus"

	"github.com/drgolem/audioengine/internal/ogg"
	"github.com/drgolem/audioengine/pkg/types"
)

// nativeSampleRate is fixed by the Opus codec: internal decode always runs
// at 48 kHz regardless of the input stream's reported sample rate.
const nativeSampleRate = 48000

// maxFrameSamples bounds a single decoded Opus frame (120ms at 48kHz is
// the largest frame the codec defines).
const maxFrameSamples = 5760

// Decoder decodes an Ogg Opus file to interleaved stereo float32 PCM.
type Decoder struct {
	file     *os.File
	packets  *ogg.PacketReader
	dec      *gopus.Decoder
	tags     types.Tags
	preSkip  int
	skipped  bool
	pcmBuf   []float32
}

// Open parses the Ogg container headers (OpusHead/OpusTags) and prepares
// a two-channel libopus decoder, so every packet decodes to interleaved
// stereo whatever channel count OpusHead advertises.
func Open(fileName string) (*Decoder, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("opus: open: %w", err)
	}

	packets := ogg.NewPacketReader(file)
	if err := packets.ReadHeaders(); err != nil {
		file.Close()
		return nil, fmt.Errorf("opus: read headers: %w", err)
	}

	dec, err := gopus.NewDecoder(nativeSampleRate, 2)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("opus: new decoder: %w", err)
	}

	return &Decoder{
		file:    file,
		packets: packets,
		dec:     dec,
		tags:    parseTags(packets.Tags),
		preSkip: int(packets.PreSkip),
		pcmBuf:  make([]float32, maxFrameSamples*2),
	}, nil
}

// parseTags folds repeated Vorbis-style comment keys per the join rules:
// multiple ARTIST values join with ", "; multiple ALBUM/TITLE values join
// with " ".
func parseTags(pairs []ogg.TagPair) types.Tags {
	var artists, albums, titles []string
	for _, p := range pairs {
		switch strings.ToUpper(p.Key) {
		case "ARTIST":
			artists = append(artists, p.Value)
		case "ALBUM":
			albums = append(albums, p.Value)
		case "TITLE":
			titles = append(titles, p.Value)
		}
	}
	return types.Tags{
		Artist: strings.Join(artists, ", "),
		Album:  strings.Join(albums, " "),
		Title:  strings.Join(titles, " "),
	}
}

// SampleRate always returns 48000: Opus decodes at a fixed internal rate.
func (d *Decoder) SampleRate() int { return nativeSampleRate }

// Tags returns the OpusTags metadata read at open time.
func (d *Decoder) Tags() types.Tags { return d.tags }

// Decode decodes the next Opus packet into interleaved stereo float32
// PCM, discarding the pre-skip samples mandated by the OpusHead header
// from the front of the very first decoded frame.
func (d *Decoder) Decode() ([]float32, error) {
	packet, err := d.packets.Next()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("opus: read packet: %w", err)
	}

	n, err := d.dec.DecodeFloat32(packet, d.pcmBuf)
	if err != nil {
		return nil, fmt.Errorf("opus: decode: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	out := d.pcmBuf[:n*2]
	if !d.skipped {
		d.skipped = true
		skipFrames := min(d.preSkip, n)
		out = out[skipFrames*2:]
	}

	// Return a copy: pcmBuf is reused on the next call.
	cpy := make([]float32, len(out))
	copy(cpy, out)
	return cpy, nil
}

// Close releases the underlying file handle.
func (d *Decoder) Close() error {
	return d.file.Close()
}
