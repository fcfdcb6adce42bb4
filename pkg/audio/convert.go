// ABOUTME: PCM sample conversions
// ABOUTME: int16/float32 scaling, byte decoding and (de)interleaving
package audio

import (
	"encoding/binary"
	"math"
)

// Int16ToFloat32 scales a sample into [-1, 1)
func Int16ToFloat32(s int16) float32 {
	return float32(s) / 32768
}

// Float32ToInt16 scales a float sample back to int16, rounding to nearest and
// clipping out-of-range input.
func Float32ToInt16(f float32) int16 {
	v := math.Round(float64(f) * 32768)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// DecodeInt16 reads little-endian int16 samples from src into dst and returns
// the number of samples decoded.
func DecodeInt16(dst []int16, src []byte) int {
	n := min(len(dst), len(src)/2)
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
	return n
}

// EncodeInt16 writes samples as little-endian bytes and returns the number of
// bytes written.
func EncodeInt16(dst []byte, src []int16) int {
	n := min(len(dst)/2, len(src))
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(src[i]))
	}
	return n * 2
}

// Deinterleave splits interleaved little-endian int16 bytes into one plane per
// channel. Each plane must hold len(src)/(2*len(planes)) samples.
func Deinterleave(planes [][]int16, src []byte) {
	channels := len(planes)
	frames := len(src) / (2 * channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			planes[ch][i] = int16(binary.LittleEndian.Uint16(src[off:]))
		}
	}
}

// DeinterleaveFloat32 is Deinterleave with int16 to float scaling
func DeinterleaveFloat32(planes [][]float32, src []byte) {
	channels := len(planes)
	frames := len(src) / (2 * channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			planes[ch][i] = Int16ToFloat32(int16(binary.LittleEndian.Uint16(src[off:])))
		}
	}
}

// ToFloat32 converts interleaved little-endian int16 bytes to interleaved
// floats and returns the number of samples converted.
func ToFloat32(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/2)
	for i := 0; i < n; i++ {
		dst[i] = Int16ToFloat32(int16(binary.LittleEndian.Uint16(src[i*2:])))
	}
	return n
}

// InterleaveFloat32 merges float planes back into interleaved little-endian
// int16 bytes. dst must hold len(planes[0])*len(planes)*2 bytes.
func InterleaveFloat32(dst []byte, planes [][]float32) {
	channels := len(planes)
	if channels == 0 {
		return
	}
	for i := range planes[0] {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			binary.LittleEndian.PutUint16(dst[off:], uint16(Float32ToInt16(planes[ch][i])))
		}
	}
}
