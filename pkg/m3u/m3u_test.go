package m3u

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFileResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	playlistPath := filepath.Join(dir, "list.m3u")

	content := "#EXTM3U\n#EXTINF:123,Some Title\nsongs/a.mp3\n\nhttp://example.com/stream.mp3\n../outside.wav\n"
	if err := os.WriteFile(playlistPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ParseFile(playlistPath)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	want := []string{
		filepath.Join(dir, "songs/a.mp3"),
		filepath.Clean(filepath.Join(dir, "../outside.wav")),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v entries, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}
