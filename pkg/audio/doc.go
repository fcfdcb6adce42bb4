// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines sample formats, stream format and PCM conversion helpers
// Package audio provides fundamental audio types and utilities shared by the
// player and encoder.
//
// The public PCM boundary of this module is interleaved, signed 16-bit,
// little-endian, 2 channels. This package defines:
//   - Format: Describes a decoded stream (sample rate, channels, bit depth)
//   - SampleFormat: In-memory sample layouts accepted by codec backends
//
// It also provides conversions between those layouts:
//   - int16 ↔ float32 in [-1, 1]
//   - interleaved ↔ planar
//   - raw little-endian bytes ↔ typed samples
//
// Example:
//
//	planes := [][]float32{make([]float32, n), make([]float32, n)}
//	audio.DeinterleaveFloat32(planes, pcm)
package audio
