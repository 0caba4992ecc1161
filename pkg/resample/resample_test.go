package resample

import "testing"

func TestNewBypassWhenRatesEqual(t *testing.T) {
	r, err := New(48000, 48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !r.bypass {
		t.Fatal("expected bypass mode when rates are equal")
	}

	in := []float32{0.1, -0.2, 0.3, -0.4}
	out, err := r.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d samples, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}

	flushed, err := r.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if flushed != nil {
		t.Fatalf("Close() in bypass mode = %v, want nil", flushed)
	}
}

func TestFloatBytesRoundTrip(t *testing.T) {
	in := []float32{0, 1, -1, 0.5, -0.5, 123.456}
	raw := floatsToBytes(in)
	if len(raw) != len(in)*4 {
		t.Fatalf("floatsToBytes produced %d bytes, want %d", len(raw), len(in)*4)
	}

	out := bytesToFloats(raw)
	if len(out) != len(in) {
		t.Fatalf("bytesToFloats produced %d samples, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}
