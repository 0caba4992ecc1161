// Package mp3 adapts github.com/imcarsen/go-mp3 (pure Go MPEG-1/2 Layer III
// decode) and github.com/bogem/id3v2 (ID3 tag reading) to the engine's
// Decoder interface, including the leading-silence trim performed before
// the first chunk is emitted.
package mp3

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/bogem/id3v2/v2"
	gomp3 "github.com/imcarsen/go-mp3"

	"github.com/drgolem/audioengine/pkg/types"
)

// frameBytes is the byte size of one decoded MPEG-1 Layer III frame's
// output: 1152 samples per channel, 2 channels, 16-bit little-endian PCM.
const frameBytes = 1152 * 2 * 2

const chunkFrames = 4096

// Decoder decodes an MP3 file to interleaved stereo float32 PCM.
type Decoder struct {
	file *os.File
	dec  *gomp3.Decoder
	rate int
	tags types.Tags

	trimmed bool
}

// Open parses the leading ID3v2 tag (if any) and prepares the underlying
// go-mp3 decoder.
func Open(fileName string) (*Decoder, error) {
	tags := readTags(fileName)

	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("mp3: open: %w", err)
	}

	dec, err := gomp3.NewDecoder(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mp3: decode header: %w", err)
	}

	return &Decoder{
		file: file,
		dec:  dec,
		rate: dec.SampleRate(),
		tags: tags,
	}, nil
}

func readTags(fileName string) types.Tags {
	tag, err := id3v2.Open(fileName, id3v2.Options{Parse: true})
	if err != nil {
		return types.Tags{}
	}
	defer tag.Close()
	return types.Tags{
		Artist: tag.Artist(),
		Album:  tag.Album(),
		Title:  tag.Title(),
	}
}

// SampleRate returns the rate reported by the bitstream's first frame.
func (d *Decoder) SampleRate() int { return d.rate }

// Tags returns the ID3v2 metadata read at open time.
func (d *Decoder) Tags() types.Tags { return d.tags }

// Decode returns the next chunk of interleaved stereo float32 PCM. Before
// the first chunk is produced it performs the gapless-adjacent silence
// trim: it discards the first decoded frame if its first 16-bit sample is
// exactly zero (an encoder delay frame), then scans forward within the
// next frame (or within the first one, if it was kept) for the first
// stereo pair loud enough to matter, discarding everything before it.
func (d *Decoder) Decode() ([]float32, error) {
	if !d.trimmed {
		d.trimmed = true
		return d.firstChunk()
	}
	return d.readChunk(chunkFrames * frameBytes)
}

func (d *Decoder) firstChunk() ([]float32, error) {
	frame, err := d.readRawFrame()
	if err != nil {
		return nil, err
	}

	if len(frame) >= 2 && firstSample(frame) == 0 {
		frame, err = d.readRawFrame()
		if err != nil {
			return nil, err
		}
	}

	samples := pcm16ToFloat(frame)
	trimmed := trimLeadingSilence(samples)

	rest, err := d.readChunk(chunkFrames * frameBytes)
	if err != nil && err != io.EOF {
		return nil, err
	}
	out := append(trimmed, rest...)
	if len(out) == 0 && err == io.EOF {
		return nil, io.EOF
	}
	return out, nil
}

// firstSample returns the first 16-bit little-endian PCM sample in raw.
func firstSample(raw []byte) int16 {
	return int16(binary.LittleEndian.Uint16(raw[0:2]))
}

// trimLeadingSilence drops leading stereo pairs until one exceeds the
// loudness threshold, keeping everything from that pair onward.
func trimLeadingSilence(samples []float32) []float32 {
	for i := 0; i+1 < len(samples); i += 2 {
		l, r := samples[i], samples[i+1]
		if l*l > 0.01 || r*r > 0.01 {
			return samples[i:]
		}
	}
	return nil
}

func (d *Decoder) readRawFrame() ([]byte, error) {
	buf := make([]byte, frameBytes)
	n, err := io.ReadFull(d.dec, buf)
	if n == 0 {
		if err != nil {
			return nil, io.EOF
		}
		return nil, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return buf[:n], err
}

func (d *Decoder) readChunk(maxBytes int) ([]float32, error) {
	buf := make([]byte, maxBytes)
	n, err := d.dec.Read(buf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("mp3: decode: %w", err)
		}
		return nil, io.EOF
	}
	// go-mp3 produces 16-bit stereo (4 bytes per frame); keep whole frames
	// only, dropping any trailing partial frame defensively.
	n -= n % 4
	return pcm16ToFloat(buf[:n]), nil
}

func pcm16ToFloat(raw []byte) []float32 {
	n := len(raw) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

// Close releases the underlying file handle.
func (d *Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
