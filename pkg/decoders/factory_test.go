package decoders

import (
	"testing"

	"github.com/drgolem/audioengine/pkg/types"
)

func TestSplitMIME(t *testing.T) {
	cases := []struct {
		in      string
		top     string
		sub     string
		wantOK  bool
	}{
		{"audio/mpeg", "audio", "mpeg", true},
		{"audio/x-wav; charset=binary", "audio", "x-wav", true},
		{"  audio/flac  ", "audio", "flac", true},
		{"notamime", "", "", false},
	}

	for _, c := range cases {
		top, sub, ok := splitMIME(c.in)
		if ok != c.wantOK || top != c.top || sub != c.sub {
			t.Errorf("splitMIME(%q) = %q, %q, %v; want %q, %q, %v", c.in, top, sub, ok, c.top, c.sub, c.wantOK)
		}
	}
}

func TestDetectSubtypeExtensionFallback(t *testing.T) {
	cases := map[string]string{
		"song.mp3":        "mpeg",
		"track.WAV":       "wav",
		"stream.opus":     "ogg",
	}
	for name, want := range cases {
		got, err := detectSubtype(name)
		if err != nil {
			t.Fatalf("detectSubtype(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("detectSubtype(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestDetectSubtypeUnsupportedExtension(t *testing.T) {
	_, err := detectSubtype("notes.txt")
	if err != types.ErrUnsupportedFormat {
		t.Fatalf("got %v, want ErrUnsupportedFormat", err)
	}
}
