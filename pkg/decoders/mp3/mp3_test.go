package mp3

import "testing"

func TestTrimLeadingSilence(t *testing.T) {
	cases := []struct {
		name   string
		in     []float32
		wantAt int // index into in the result should start at
	}{
		{"all silent", []float32{0, 0, 0, 0}, -1},
		{"loud first pair", []float32{0.5, 0.5, 0.1, 0.1}, 0},
		{"loud second pair", []float32{0, 0, 0.5, -0.5, 0.1, 0.1}, 2},
		{"empty", nil, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := trimLeadingSilence(c.in)
			if c.wantAt == -1 {
				if got != nil {
					t.Fatalf("got %v, want nil", got)
				}
				return
			}
			want := c.in[c.wantAt:]
			if len(got) != len(want) {
				t.Fatalf("got len %d, want len %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestFirstSample(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want int16
	}{
		{"zero sample", []byte{0x00, 0x00, 0x34, 0x12}, 0},
		{"first byte zero but sample non-zero", []byte{0x00, 0x01, 0x00, 0x00}, 256},
		{"negative sample", []byte{0x00, 0x80, 0x00, 0x00}, -32768},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := firstSample(c.raw); got != c.want {
				t.Errorf("firstSample(%v) = %d, want %d", c.raw, got, c.want)
			}
		})
	}
}

func TestPcm16ToFloat(t *testing.T) {
	raw := []byte{0x00, 0x00, 0xFF, 0x7F} // 0, 32767
	got := pcm16ToFloat(raw)
	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2", len(got))
	}
	if got[0] != 0 {
		t.Errorf("got[0] = %v, want 0", got[0])
	}
	want1 := float32(32767) / 32768.0
	if got[1] != want1 {
		t.Errorf("got[1] = %v, want %v", got[1], want1)
	}
}
