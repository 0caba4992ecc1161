// Package decoders dispatches a file path to the appropriate format
// adapter by sniffing its content, falling back to its extension, the
// way the engine's original format-detection layer did.
package decoders

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/drgolem/audioengine/pkg/decoders/flac"
	"github.com/drgolem/audioengine/pkg/decoders/mp3"
	"github.com/drgolem/audioengine/pkg/decoders/opus"
	"github.com/drgolem/audioengine/pkg/decoders/wav"
	"github.com/drgolem/audioengine/pkg/types"
)

// Open detects fileName's format and returns an opened Decoder.
//
// Detection first attempts magic-byte content sniffing; if the detected
// top-level type isn't "audio", it falls back to extension-based
// guessing (.mp3 -> mpeg, .wav -> wav, .opus -> ogg). The resulting
// subtype is mapped to a concrete adapter. An unrecognized subtype or an
// unsupported extension yields ErrUnsupportedFormat.
func Open(fileName string) (types.Decoder, error) {
	subtype, err := detectSubtype(fileName)
	if err != nil {
		return nil, err
	}

	switch subtype {
	case "mpeg":
		return mp3.Open(fileName)
	case "wav", "x-wav":
		return wav.Open(fileName)
	case "ogg":
		return opus.Open(fileName)
	case "flac", "x-flac":
		return flac.Open(fileName)
	default:
		return nil, types.ErrUnsupportedFormat
	}
}

func detectSubtype(fileName string) (string, error) {
	mtype, err := mimetype.DetectFile(fileName)
	if err == nil {
		full := mtype.String()
		if topLevel, subtype, ok := splitMIME(full); ok && topLevel == "audio" {
			return subtype, nil
		}
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".mp3":
		return "mpeg", nil
	case ".wav":
		return "wav", nil
	case ".opus":
		return "ogg", nil
	default:
		return "", types.ErrUnsupportedFormat
	}
}

func splitMIME(s string) (topLevel, subtype string, ok bool) {
	// Strip any "; charset=..." parameters mimetype sometimes appends.
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
