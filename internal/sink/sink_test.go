package sink

import (
	"context"
	"testing"
	"time"

	"github.com/drgolem/audioengine/pkg/ringbuffer"
	"github.com/drgolem/audioengine/pkg/wake"
)

func TestSendFitsWithoutBlocking(t *testing.T) {
	ring := ringbuffer.New[float32](8)
	w := wake.New()
	s := New(ring, w)

	done := make(chan error, 1)
	go func() { done <- s.Send(context.Background(), []float32{1, 2, 3}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Send returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Send blocked though the ring had room")
	}
}

func TestSendSuspendsUntilWoken(t *testing.T) {
	ring := ringbuffer.New[float32](4)
	w := wake.New()
	s := New(ring, w)

	// Fill the ring so the first write attempt finds no room at all.
	ring.Write([]float32{1, 2, 3, 4})

	done := make(chan error, 1)
	go func() { done <- s.Send(context.Background(), []float32{5, 6}) }()

	select {
	case <-done:
		t.Fatal("Send returned before the ring had room")
	case <-time.After(50 * time.Millisecond):
	}

	out := make([]float32, 2)
	ring.Read(out)
	w.Signal()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Send returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Send never resumed after wake + drain")
	}
}

func TestSendCancelledByContext(t *testing.T) {
	ring := ringbuffer.New[float32](2)
	w := wake.New()
	s := New(ring, w)
	ring.Write([]float32{1, 2})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Send(ctx, []float32{3, 4}) }()

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error after ctx cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Send never returned after ctx cancellation")
	}
}
