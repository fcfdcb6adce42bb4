// ABOUTME: Conversion from s16le interleaved input to the codec frame layout
// ABOUTME: Covers s16p, s16, fltp and flt
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
)

func convertible(f audio.SampleFormat) bool {
	switch f {
	case audio.SampleFormatS16P, audio.SampleFormatS16,
		audio.SampleFormatFLTP, audio.SampleFormatFLT:
		return true
	}
	return false
}

// fillFrame converts pcm into the preallocated working frame
func (e *Encoder) fillFrame(pcm []byte) error {
	f := e.frame
	switch e.format {
	case audio.SampleFormatS16P:
		audio.Deinterleave(f.Int16, pcm)
	case audio.SampleFormatS16:
		audio.DecodeInt16(f.Int16[0], pcm)
	case audio.SampleFormatFLTP:
		audio.DeinterleaveFloat32(f.Float32, pcm)
	case audio.SampleFormatFLT:
		audio.ToFloat32(f.Float32[0], pcm)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, e.format)
	}
	return nil
}
