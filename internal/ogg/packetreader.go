// Package ogg implements a minimal Ogg container demuxer: enough to pull
// raw Opus packets and the OpusHead/OpusTags header packets out of an Ogg
// Opus file. It understands page framing (capture pattern, segment table)
// but nothing about seeking or multiplexed logical streams.
package ogg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

var (
	opusHeadSig = [8]byte{'O', 'p', 'u', 's', 'H', 'e', 'a', 'd'}
	opusTagsSig = [8]byte{'O', 'p', 'u', 's', 'T', 'a', 'g', 's'}
)

// PacketReader reads successive Opus audio packets from an Ogg Opus
// stream, transparently reassembling packets that span page boundaries
// and discarding the OpusHead/OpusTags header packets.
type PacketReader struct {
	br io.Reader

	carry        []byte
	pending      [][]byte
	isDiscarding bool

	header [27]byte
	segArr [255]byte

	// PreSkip is the number of 48kHz samples to discard from the start
	// of the decoded stream, read from OpusHead.
	PreSkip uint16
	// Channels comes from OpusHead. OpusHead's input sample rate field is
	// not kept: Opus output is always decoded at 48000 Hz.
	Channels int

	// Tags holds the Vorbis-style comment list from OpusTags, in
	// declaration order, as they may repeat for multi-valued fields.
	Tags []TagPair

	headParsed bool
	tagsParsed bool
}

// TagPair is one "KEY=value" Vorbis comment entry.
type TagPair struct {
	Key   string
	Value string
}

// NewPacketReader wraps r, an Ogg Opus bitstream.
func NewPacketReader(r io.Reader) *PacketReader {
	return &PacketReader{br: r, Channels: 2}
}

// ReadHeaders consumes pages until both OpusHead and OpusTags have been
// seen, populating PreSkip, Channels, and Tags. It must be called before
// the first call to Next.
func (o *PacketReader) ReadHeaders() error {
	for !o.headParsed || !o.tagsParsed {
		if _, err := o.nextPacket(); err != nil {
			return err
		}
	}
	return nil
}

// Next returns the next raw Opus audio packet, or io.EOF at end of
// stream.
func (o *PacketReader) Next() ([]byte, error) {
	for {
		pkt, err := o.nextPacket()
		if err != nil {
			return nil, err
		}
		if pkt != nil {
			return pkt, nil
		}
	}
}

// nextPacket reads pages until one full packet is assembled. It returns a
// nil packet (no error) when the packet it just completed was a header
// packet that should not be surfaced to the Opus decoder.
func (o *PacketReader) nextPacket() ([]byte, error) {
	for {
		if len(o.pending) > 0 {
			pkt := o.pending[0]
			o.pending = o.pending[1:]
			return o.classify(pkt)
		}

		if _, err := io.ReadFull(o.br, o.header[:]); err != nil {
			if err == io.ErrUnexpectedEOF {
				return nil, io.EOF
			}
			return nil, err
		}
		if o.header[0] != 'O' || o.header[1] != 'g' || o.header[2] != 'g' || o.header[3] != 'S' {
			return nil, fmt.Errorf("ogg: bad capture pattern %q", o.header[0:4])
		}

		segTable := o.segArr[:int(o.header[26])]
		if _, err := io.ReadFull(o.br, segTable); err != nil {
			return nil, io.ErrUnexpectedEOF
		}

		total := 0
		for _, s := range segTable {
			total += int(s)
		}
		payload := make([]byte, total)
		if total > 0 {
			if _, err := io.ReadFull(o.br, payload); err != nil {
				return nil, io.ErrUnexpectedEOF
			}
		}

		offset := 0
		pkt := o.carry
		o.carry = nil

		for _, b := range segTable {
			size := int(b)
			if size > 0 {
				pkt = append(pkt, payload[offset:offset+size]...)
				offset += size
			}
			if b < 255 {
				if len(pkt) > 0 {
					o.pending = append(o.pending, pkt)
				}
				pkt = nil
			}
		}
		if len(pkt) > 0 {
			o.carry = pkt
		}
	}
}

func (o *PacketReader) classify(pkt []byte) ([]byte, error) {
	if len(pkt) >= 8 && bytes.Equal(pkt[:8], opusHeadSig[:]) {
		if len(pkt) >= 11 {
			o.Channels = int(pkt[9])
		}
		if len(pkt) >= 12 {
			o.PreSkip = binary.LittleEndian.Uint16(pkt[10:12])
		}
		o.headParsed = true
		return nil, nil
	}
	if len(pkt) >= 8 && bytes.Equal(pkt[:8], opusTagsSig[:]) {
		o.Tags = parseOpusTags(pkt)
		o.tagsParsed = true
		return nil, nil
	}
	return pkt, nil
}

// parseOpusTags decodes the vendor string and comment list following the
// "OpusTags" signature, per RFC 7845 §5.2.
func parseOpusTags(pkt []byte) []TagPair {
	const sigLen = 8
	if len(pkt) < sigLen+4 {
		return nil
	}
	pos := sigLen
	vendorLen := int(binary.LittleEndian.Uint32(pkt[pos:]))
	pos += 4 + vendorLen
	if pos+4 > len(pkt) {
		return nil
	}
	count := int(binary.LittleEndian.Uint32(pkt[pos:]))
	pos += 4

	tags := make([]TagPair, 0, count)
	for i := 0; i < count && pos+4 <= len(pkt); i++ {
		l := int(binary.LittleEndian.Uint32(pkt[pos:]))
		pos += 4
		if pos+l > len(pkt) {
			break
		}
		entry := string(pkt[pos : pos+l])
		pos += l
		key, val, found := bytesCut(entry, '=')
		if !found {
			continue
		}
		tags = append(tags, TagPair{Key: key, Value: val})
	}
	return tags
}

func bytesCut(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}
