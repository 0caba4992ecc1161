package wake

import (
	"testing"
	"time"
)

func TestSignalWait(t *testing.T) {
	s := New()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	s.Signal()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait never returned after Signal")
	}
}

func TestSignalCoalesces(t *testing.T) {
	s := New()
	s.Signal()
	s.Signal()
	s.Signal()

	select {
	case <-s.Chan():
	default:
		t.Fatal("expected a pending wake")
	}

	select {
	case <-s.Chan():
		t.Fatal("expected only one pending wake to be stored")
	default:
	}
}
