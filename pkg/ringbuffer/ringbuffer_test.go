package ringbuffer

import "testing"

func TestWriteReadRoundTrip(t *testing.T) {
	r := New[float32](8)

	data := []float32{1, 2, 3, 4}
	n, err := r.Write(data)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n != len(data) {
		t.Fatalf("Write returned %d, want %d", n, len(data))
	}

	out := make([]float32, 4)
	n, err = r.Read(out)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if n != 4 {
		t.Fatalf("Read returned %d, want 4", n)
	}
	for i, v := range data {
		if out[i] != v {
			t.Errorf("out[%d] = %v, want %v", i, out[i], v)
		}
	}
}

func TestWriteInsufficientSpace(t *testing.T) {
	r := New[float32](4)
	if _, err := r.Write([]float32{1, 2, 3, 4, 5}); err != ErrInsufficientSpace {
		t.Fatalf("got %v, want ErrInsufficientSpace", err)
	}
}

func TestReadInsufficientData(t *testing.T) {
	r := New[float32](4)
	if _, err := r.Read(make([]float32, 2)); err != ErrInsufficientData {
		t.Fatalf("got %v, want ErrInsufficientData", err)
	}
}

func TestWrapAround(t *testing.T) {
	r := New[float32](4)

	r.Write([]float32{1, 2, 3})
	out := make([]float32, 3)
	r.Read(out)

	// writePos/readPos are now at 3; this write wraps the backing array.
	if _, err := r.Write([]float32{4, 5, 6}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	out = make([]float32, 3)
	n, _ := r.Read(out)
	if n != 3 {
		t.Fatalf("Read returned %d, want 3", n)
	}
	want := []float32{4, 5, 6}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestWriteAvailablePartial(t *testing.T) {
	r := New[float32](4)
	r.Write([]float32{1, 2, 3})

	n := r.WriteAvailable([]float32{4, 5, 6})
	if n != 1 {
		t.Fatalf("WriteAvailable wrote %d, want 1", n)
	}
	if !r.IsFull() {
		t.Fatal("expected buffer to be full")
	}
}

func TestReadOneAndDrain(t *testing.T) {
	r := New[float32](4)
	r.Write([]float32{1, 2})

	v, ok := r.ReadOne()
	if !ok || v != 1 {
		t.Fatalf("ReadOne() = %v, %v, want 1, true", v, ok)
	}

	r.Write([]float32{3, 4, 5})
	r.Drain()
	if !r.IsEmpty() {
		t.Fatal("expected buffer to be empty after Drain")
	}
}

func TestNextPowerOf2(t *testing.T) {
	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 384000: 524288}
	for in, want := range cases {
		if got := nextPowerOf2(in); got != want {
			t.Errorf("nextPowerOf2(%d) = %d, want %d", in, got, want)
		}
	}
}
