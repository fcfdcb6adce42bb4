// ABOUTME: Tests for PCM conversions
// ABOUTME: Covers scaling, clipping and planar round trips
package audio

import (
	"math"
	"testing"
)

func TestInt16ToFloat32(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected float32
	}{
		{"zero", 0, 0},
		{"min", -32768, -1},
		{"half", 16384, 0.5},
		{"max", 32767, 32767.0 / 32768.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Int16ToFloat32(tt.input); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFloat32ToInt16Clips(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"one clips", 1, 32767},
		{"over range", 1.5, 32767},
		{"under range", -2, -32768},
		{"minus one", -1, -32768},
		{"rounds", 0.5 / 32768, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Float32ToInt16(tt.input); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestEncodeDecodeInt16(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 1234}
	buf := make([]byte, len(samples)*2)
	if n := EncodeInt16(buf, samples); n != len(buf) {
		t.Fatalf("expected %d bytes, got %d", len(buf), n)
	}
	if buf[2] != 0x01 || buf[3] != 0x00 {
		t.Errorf("expected little endian encoding, got %x", buf[2:4])
	}

	out := make([]int16, len(samples))
	if n := DecodeInt16(out, buf); n != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), n)
	}
	for i := range samples {
		if out[i] != samples[i] {
			t.Errorf("sample %d: expected %d, got %d", i, samples[i], out[i])
		}
	}
}

func TestDeinterleave(t *testing.T) {
	interleaved := []int16{1, -1, 2, -2, 3, -3}
	buf := make([]byte, len(interleaved)*2)
	EncodeInt16(buf, interleaved)

	planes := [][]int16{make([]int16, 3), make([]int16, 3)}
	Deinterleave(planes, buf)

	for i := 0; i < 3; i++ {
		if planes[0][i] != int16(i+1) {
			t.Errorf("left[%d] = %d", i, planes[0][i])
		}
		if planes[1][i] != -int16(i+1) {
			t.Errorf("right[%d] = %d", i, planes[1][i])
		}
	}
}

func TestPlanarFloatRoundTrip(t *testing.T) {
	const frames = 480
	interleaved := make([]int16, frames*Channels)
	for i := range interleaved {
		interleaved[i] = int16(math.Sin(float64(i)/10) * 30000)
	}
	interleaved[0] = math.MinInt16
	interleaved[1] = math.MaxInt16

	src := make([]byte, len(interleaved)*2)
	EncodeInt16(src, interleaved)

	planes := [][]float32{make([]float32, frames), make([]float32, frames)}
	DeinterleaveFloat32(planes, src)

	for _, plane := range planes {
		for i, v := range plane {
			if v < -1 || v > 1 {
				t.Fatalf("sample %d out of range: %v", i, v)
			}
		}
	}

	dst := make([]byte, len(src))
	InterleaveFloat32(dst, planes)

	back := make([]int16, len(interleaved))
	DecodeInt16(back, dst)
	for i := range interleaved {
		diff := int(back[i]) - int(interleaved[i])
		if diff < -1 || diff > 1 {
			t.Errorf("sample %d: expected %d, got %d", i, interleaved[i], back[i])
		}
	}
}

func TestToFloat32(t *testing.T) {
	src := make([]byte, 4)
	EncodeInt16(src, []int16{16384, -16384})
	dst := make([]float32, 2)
	if n := ToFloat32(dst, src); n != 2 {
		t.Fatalf("expected 2 samples, got %d", n)
	}
	if dst[0] != 0.5 || dst[1] != -0.5 {
		t.Errorf("unexpected values %v", dst)
	}
}
