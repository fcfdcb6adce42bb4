// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats and sample layouts
package audio

import (
	"fmt"
	"time"
)

const (
	// Channels is the channel count at every PCM boundary of this module.
	Channels = 2

	// BytesPerSample is the size of one int16 sample.
	BytesPerSample = 2

	// BytesPerFrame is the size of one interleaved stereo int16 frame.
	BytesPerFrame = Channels * BytesPerSample
)

// Format describes a decoded audio stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// SampleFormat identifies how samples are laid out in memory
type SampleFormat int

const (
	SampleFormatNone SampleFormat = iota
	SampleFormatS16               // int16, interleaved
	SampleFormatS16P              // int16, one plane per channel
	SampleFormatS32               // int32, interleaved
	SampleFormatFLT               // float32, interleaved
	SampleFormatFLTP              // float32, one plane per channel
)

var sampleFormatNames = map[SampleFormat]string{
	SampleFormatNone: "none",
	SampleFormatS16:  "s16",
	SampleFormatS16P: "s16p",
	SampleFormatS32:  "s32",
	SampleFormatFLT:  "flt",
	SampleFormatFLTP: "fltp",
}

func (f SampleFormat) String() string {
	if name, ok := sampleFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// BytesPerSample returns the storage size of a single sample, or 0 for
// SampleFormatNone and unknown values.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case SampleFormatS16, SampleFormatS16P:
		return 2
	case SampleFormatS32, SampleFormatFLT, SampleFormatFLTP:
		return 4
	default:
		return 0
	}
}

// IsPlanar reports whether each channel is stored in its own plane
func (f SampleFormat) IsPlanar() bool {
	return f == SampleFormatS16P || f == SampleFormatFLTP
}

// BytesForDuration returns the size of d worth of interleaved stereo int16
// audio at sampleRate, rounded down to a whole frame.
func BytesForDuration(sampleRate int, d time.Duration) int {
	frames := int(int64(sampleRate) * int64(d) / int64(time.Second))
	return frames * BytesPerFrame
}

// DurationForBytes is the inverse of BytesForDuration
func DurationForBytes(sampleRate, n int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	frames := n / BytesPerFrame
	return time.Duration(int64(frames) * int64(time.Second) / int64(sampleRate))
}

// SampleToInt16 narrows a sample of the given bit depth to 16 bits
func SampleToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	case bitDepth < 16:
		return int16(sample << (16 - bitDepth))
	default:
		return int16(sample)
	}
}
