package playback

import "testing"

type noopFlusher struct{ calls int }

func (f *noopFlusher) RequestFlush() { f.calls++ }

func advanceTo(s *State, path string) *Current {
	c := &Current{Path: path, Cancel: NewCancelHandle()}
	s.Advance(c)
	return c
}

func TestEnqueueAndAdvance(t *testing.T) {
	s := New()
	s.Enqueue("/a")
	s.Enqueue("/b")

	next, ok := s.PeekNext()
	if !ok || next != "/a" {
		t.Fatalf("PeekNext() = %q, %v, want /a, true", next, ok)
	}

	advanceTo(s, "/a")
	if !s.ConsumeChanged() {
		t.Fatal("expected changed after Advance")
	}
	if s.ConsumeChanged() {
		t.Fatal("expected changed to reset after one consume")
	}

	path, ok := s.CurrentPath()
	if !ok || path != "/a" {
		t.Fatalf("CurrentPath() = %q, %v, want /a, true", path, ok)
	}
	if idx := s.CurrentIndex(); idx != 0 {
		t.Fatalf("CurrentIndex() = %d, want 0", idx)
	}
}

func TestSkip(t *testing.T) {
	s := New()
	flusher := &noopFlusher{}
	s.Init(flusher)

	s.Enqueue("/a")
	s.Enqueue("/b")
	advanceTo(s, "/a")

	cur := mustCurrent(t, s)
	s.Skip()

	if !cur.Cancel.Fired() {
		t.Fatal("expected Skip to fire the current CancelHandle")
	}
	if flusher.calls != 1 {
		t.Fatalf("expected one flush request, got %d", flusher.calls)
	}

	advanceTo(s, "/b")
	path, _ := s.CurrentPath()
	if path != "/b" {
		t.Fatalf("CurrentPath() after skip+advance = %q, want /b", path)
	}
	if idx := s.CurrentIndex(); idx != 1 {
		t.Fatalf("CurrentIndex() = %d, want 1", idx)
	}
}

func TestSkipTo(t *testing.T) {
	s := New()
	s.Enqueue("/a")
	s.Enqueue("/b")
	s.Enqueue("/c")
	s.Enqueue("/d")
	advanceTo(s, "/a")

	s.SkipTo(2)

	next, ok := s.PeekNext()
	if !ok || next != "/c" {
		t.Fatalf("PeekNext() after SkipTo(2) = %q, %v, want /c, true", next, ok)
	}
	if idx := s.CurrentIndex(); idx != 2 {
		t.Fatalf("CurrentIndex() after SkipTo(2) = %d, want 2", idx)
	}

	advanceTo(s, "/c")
	entries := s.Playlist(nil)
	if len(entries) != 4 {
		t.Fatalf("len(Playlist()) = %d, want 4", len(entries))
	}
	if entries[0].Path != "/a" || entries[1].Path != "/b" {
		t.Fatalf("history after SkipTo(2) = %v, want [/a /b ...]", entries[:2])
	}
}

func TestSkipToNoOpOnCurrentIndex(t *testing.T) {
	s := New()
	s.Enqueue("/a")
	s.Enqueue("/b")
	advanceTo(s, "/a")

	before := s.Playlist(nil)
	s.SkipTo(0)
	after := s.Playlist(nil)

	if len(before) != len(after) {
		t.Fatalf("SkipTo(current_index) mutated playlist length: %d -> %d", len(before), len(after))
	}
}

func TestPreviousAfterSkip(t *testing.T) {
	s := New()
	s.Enqueue("/a")
	s.Enqueue("/b")
	advanceTo(s, "/a")
	s.Skip()
	advanceTo(s, "/b")

	s.Previous()

	next, ok := s.PeekNext()
	if !ok || next != "/a" {
		t.Fatalf("PeekNext() after Previous() = %q, %v, want /a, true", next, ok)
	}
	if idx := s.CurrentIndex(); idx != 0 {
		t.Fatalf("CurrentIndex() after Previous() = %d, want 0", idx)
	}
}

func TestEnqueueNext(t *testing.T) {
	s := New()
	s.Enqueue("/a")
	s.Enqueue("/c")
	advanceTo(s, "/a")

	s.EnqueueNext("/x")

	next, ok := s.PeekNext()
	if !ok || next != "/x" {
		t.Fatalf("PeekNext() after EnqueueNext = %q, %v, want /x, true", next, ok)
	}

	advanceTo(s, "/x")
	entries := s.Playlist(nil)
	var upcomingPaths []string
	for _, e := range entries {
		if e.Path != "/x" {
			upcomingPaths = append(upcomingPaths, e.Path)
		}
	}
	if len(upcomingPaths) != 2 || upcomingPaths[0] != "/a" || upcomingPaths[1] != "/c" {
		t.Fatalf("upcoming after EnqueueNext+advance = %v, want [/a /c]", upcomingPaths)
	}
}

func mustCurrent(t *testing.T, s *State) *Current {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		t.Fatal("expected a current track")
	}
	return s.current
}
