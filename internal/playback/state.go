// Package playback holds the canonical playback state record: the
// queue/history model, the currently decoding track, and the single
// mutex every component synchronizes through.
package playback

import (
	"fmt"
	"sync"

	"github.com/drgolem/audioengine/pkg/types"
)

// Flusher requests that the device discard any buffered samples
// belonging to the track that just stopped being current. Implemented by
// the device output component; a no-op stub is fine for tests.
type Flusher interface {
	RequestFlush()
}

// Current describes the track presently being decoded.
type Current struct {
	Path   string
	Tags   types.Tags
	Cancel *CancelHandle
}

// State is the single process-wide playback record. All mutating methods
// take the internal mutex for their whole duration; none of them block on
// I/O.
type State struct {
	mu sync.Mutex

	inited  bool
	flusher Flusher

	upcoming []string
	history  []string
	current  *Current
	changed  bool
}

// New returns an uninitialized State.
func New() *State {
	return &State{}
}

// Init installs the device flush requester. Idempotent: calling it again
// after the first successful call is a no-op.
func (s *State) Init(flusher Flusher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inited {
		return
	}
	s.flusher = flusher
	s.inited = true
}

// Initialized reports whether Init has run.
func (s *State) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inited
}

// Enqueue appends path to the end of upcoming.
func (s *State) Enqueue(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upcoming = append(s.upcoming, path)
}

// EnqueueNext inserts path at the head of upcoming and interrupts the
// current track: the current track's path is pushed back to the head of
// upcoming and path is pushed in front of it, so upcoming becomes
// [path, current, ...rest]. current is cleared, its CancelHandle fires,
// and a device flush is requested.
func (s *State) EnqueueNext(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.upcoming = append([]string{s.current.Path}, s.upcoming...)
		s.current.Cancel.Fire()
		s.current = nil
	}
	s.upcoming = append([]string{path}, s.upcoming...)

	s.requestFlush()
}

// Skip fires the current track's CancelHandle and requests a device
// flush. current remains set; the decode driver clears it when its task
// returns and the loop calls Advance for the next track.
func (s *State) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.Cancel.Fire()
	s.requestFlush()
}

// Previous moves the current track back onto the head of upcoming, then
// pulls the most recently played track out of history onto the head of
// upcoming ahead of it, so it becomes current again next. A no-op when
// there is no current track. When history is empty only the current track
// moves back, so the decode driver starts it again from the beginning.
func (s *State) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}

	s.upcoming = append([]string{s.current.Path}, s.upcoming...)

	if len(s.history) > 0 {
		last := s.history[len(s.history)-1]
		s.history = s.history[:len(s.history)-1]
		s.upcoming = append([]string{last}, s.upcoming...)
	}

	s.current.Cancel.Fire()
	s.current = nil
	s.requestFlush()
}

// SkipTo navigates to the absolute playlist index within the virtual
// sequence history ++ current ++ upcoming. A no-op if index names the
// already-current track or is out of range.
func (s *State) SkipTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	currentIndex := len(s.history)
	total := len(s.history) + boolToInt(s.current != nil) + len(s.upcoming)
	if index == currentIndex || index < 0 || index >= total {
		return
	}

	seq := make([]string, 0, total)
	seq = append(seq, s.history...)
	if s.current != nil {
		seq = append(seq, s.current.Path)
	}
	seq = append(seq, s.upcoming...)

	s.history = append([]string{}, seq[:index]...)
	rest := seq[index:]
	selected, rest := rest[0], rest[1:]
	s.upcoming = append([]string{selected}, rest...)

	if s.current != nil {
		s.current.Cancel.Fire()
		s.current = nil
	}
	s.requestFlush()
}

// PeekNext returns the path at the head of upcoming without mutating
// state.
func (s *State) PeekNext() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.upcoming) == 0 {
		return "", false
	}
	return s.upcoming[0], true
}

// Advance pops the head of upcoming, pushes the outgoing current track
// (if any) onto history, installs newCurrent, and sets the changed flag.
func (s *State) Advance(newCurrent *Current) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.upcoming) > 0 {
		s.upcoming = s.upcoming[1:]
	}
	if s.current != nil {
		s.history = append(s.history, s.current.Path)
	}
	s.current = newCurrent
	s.changed = true
}

// DropCurrentSlot pops the most recent entry off history. This mirrors
// the original engine's open-failure recovery path exactly: it does not
// remove the offending path from upcoming, so a persistently unopenable
// file at the head of the queue is retried on every driver iteration.
func (s *State) DropCurrentSlot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) > 0 {
		s.history = s.history[:len(s.history)-1]
	}
}

// CurrentPath returns the current track's path, or "" if none.
func (s *State) CurrentPath() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.Path, true
}

// CurrentTags returns the current track's tags, or false if none.
func (s *State) CurrentTags() (types.Tags, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return types.Tags{}, false
	}
	return s.current.Tags, true
}

// CurrentIndex returns the zero-based index of the current track, equal
// to len(history) regardless of whether a track is currently playing.
func (s *State) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Entry is one row of a Playlist snapshot.
type Entry struct {
	Path string
	Tags types.Tags
}

// TagReader opens a file just long enough to read its tags, used by
// Playlist to describe entries that aren't currently playing.
type TagReader func(path string) (types.Tags, error)

// Playlist returns an ordered snapshot of history ++ current ++ upcoming.
// The current entry uses its already-known tags; every other entry is
// re-opened via readTags to read its tags, and is given empty Tags if
// that fails.
func (s *State) Playlist(readTags TagReader) []Entry {
	s.mu.Lock()
	history := append([]string{}, s.history...)
	var current *Current
	if s.current != nil {
		c := *s.current
		current = &c
	}
	upcoming := append([]string{}, s.upcoming...)
	s.mu.Unlock()

	entries := make([]Entry, 0, len(history)+len(upcoming)+1)
	for _, p := range history {
		entries = append(entries, Entry{Path: p, Tags: tagsOrEmpty(readTags, p)})
	}
	if current != nil {
		entries = append(entries, Entry{Path: current.Path, Tags: current.Tags})
	}
	for _, p := range upcoming {
		entries = append(entries, Entry{Path: p, Tags: tagsOrEmpty(readTags, p)})
	}
	return entries
}

func tagsOrEmpty(readTags TagReader, path string) types.Tags {
	if readTags == nil {
		return types.Tags{}
	}
	t, err := readTags(path)
	if err != nil {
		return types.Tags{}
	}
	return t
}

// ConsumeChanged returns the changed flag and resets it to false.
func (s *State) ConsumeChanged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.changed
	s.changed = false
	return v
}

func (s *State) requestFlush() {
	if s.flusher != nil {
		s.flusher.RequestFlush()
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ErrNotInitialized is returned by operations that require Init to have
// run first, if the engine ever needs to surface that distinction.
var ErrNotInitialized = fmt.Errorf("playback: engine not initialized")
