// ABOUTME: Test tone generator
// ABOUTME: Generates a sine wave at half scale on both channels
package source

import (
	"io"
	"math"
	"time"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
)

const (
	DefaultToneRate      = 48000
	DefaultToneFrequency = 440.0 // A4
)

// Tone generates a sine wave
type Tone struct {
	sampleRate  int
	frequency   float64
	sampleIndex uint64
	limit       uint64 // 0 = endless
}

// NewTone creates a tone generator. A zero duration never ends.
func NewTone(sampleRate int, frequency float64, duration time.Duration) *Tone {
	return &Tone{
		sampleRate: sampleRate,
		frequency:  frequency,
		limit:      uint64(int64(sampleRate) * int64(duration) / int64(time.Second)),
	}
}

func (s *Tone) Read(p []byte) (int, error) {
	frames := len(p) / audio.BytesPerFrame
	if s.limit > 0 {
		left := s.limit - s.sampleIndex
		if left == 0 {
			return 0, io.EOF
		}
		frames = int(min(uint64(frames), left))
	}

	samples := make([]int16, frames*audio.Channels)
	for i := 0; i < frames; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		v := int16(math.Sin(2*math.Pi*s.frequency*t) * 32767.0 * 0.5)
		samples[i*2] = v
		samples[i*2+1] = v
	}
	s.sampleIndex += uint64(frames)

	return audio.EncodeInt16(p, samples), nil
}

func (s *Tone) Format() audio.Format {
	return audio.Format{Codec: "tone", SampleRate: s.sampleRate, Channels: audio.Channels, BitDepth: 16}
}

func (s *Tone) Title() string { return "Test Tone" }

func (s *Tone) Close() error { return nil }
