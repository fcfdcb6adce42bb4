// ABOUTME: Tests for the streaming resampler
// ABOUTME: Checks ratios, chunk independence and the io.Reader adapter
package resample

import (
	"bytes"
	"io"
	"testing"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
)

func ramp(frames, channels int) []int16 {
	s := make([]int16, frames*channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			s[i*channels+c] = int16(i * 10 * (1 - 2*c))
		}
	}
	return s
}

func TestPassthrough(t *testing.T) {
	r := New(48000, 48000, 2)
	in := ramp(100, 2)
	out := r.Process(nil, in)
	if len(out) != len(in) {
		t.Fatalf("got %d samples, want %d", len(out), len(in))
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		in, out int
	}{
		{44100, 48000},
		{48000, 24000},
		{16000, 48000},
	}
	for _, tt := range tests {
		r := New(tt.in, tt.out, 2)
		frames := tt.in // one second
		out := r.Process(nil, ramp(frames, 2))
		got := len(out) / 2
		if got < tt.out-4 || got > tt.out {
			t.Errorf("%d->%d: produced %d frames for one second", tt.in, tt.out, got)
		}
	}
}

func TestInterpolatesRamp(t *testing.T) {
	r := New(24000, 48000, 1)
	out := r.Process(nil, []int16{0, 100, 200})
	want := []int16{0, 50, 100, 150}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestChunkingMatchesSingleCall(t *testing.T) {
	in := ramp(1000, 2)

	whole := New(44100, 48000, 2).Process(nil, in)

	r := New(44100, 48000, 2)
	var chunked []int16
	for i := 0; i < len(in); i += 2 * 37 {
		end := min(i+2*37, len(in))
		chunked = r.Process(chunked, in[i:end])
	}

	if len(chunked) != len(whole) {
		t.Fatalf("chunked produced %d samples, whole %d", len(chunked), len(whole))
	}
	for i := range whole {
		if d := int(chunked[i]) - int(whole[i]); d < -1 || d > 1 {
			t.Fatalf("sample %d: chunked %d, whole %d", i, chunked[i], whole[i])
		}
	}
}

func TestReset(t *testing.T) {
	r := New(24000, 48000, 1)
	r.Process(nil, []int16{1000, 2000})
	r.Reset()
	out := r.Process(nil, []int16{0, 100})
	if len(out) == 0 || out[0] != 0 {
		t.Errorf("after Reset output should start from the new input, got %v", out)
	}
}

func TestReader(t *testing.T) {
	in := ramp(4800, 2)
	raw := make([]byte, len(in)*2)
	audio.EncodeInt16(raw, in)

	rd := NewReader(bytes.NewReader(raw), 48000, 24000, 2)
	var got []byte
	buf := make([]byte, 1001)
	for {
		n, err := rd.Read(buf)
		if n%audio.BytesPerFrame != 0 {
			t.Fatalf("partial frame read: %d bytes", n)
		}
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}
	frames := len(got) / audio.BytesPerFrame
	if frames < 2398 || frames > 2400 {
		t.Errorf("resampled %d frames, want about 2400", frames)
	}
}
