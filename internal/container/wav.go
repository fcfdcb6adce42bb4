// ABOUTME: WAV file writer for pcm_s16le packets
// ABOUTME: Uses go-audio/wav so the header sizes are patched on close
package container

import (
	"io"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type wavWriter struct {
	enc     *wav.Encoder
	format  *goaudio.Format
	samples []int16
	ints    []int
}

func newWAV(w io.WriteSeeker, s Stream) *wavWriter {
	return &wavWriter{
		enc:    wav.NewEncoder(w, s.SampleRate, 16, s.Channels, 1),
		format: &goaudio.Format{SampleRate: s.SampleRate, NumChannels: s.Channels},
	}
}

func (w *wavWriter) WritePacket(pkt []byte) error {
	n := len(pkt) / 2
	if cap(w.samples) < n {
		w.samples = make([]int16, n)
		w.ints = make([]int, n)
	}
	w.samples = w.samples[:n]
	w.ints = w.ints[:n]

	audio.DecodeInt16(w.samples, pkt)
	for i, v := range w.samples {
		w.ints[i] = int(v)
	}
	return w.enc.Write(&goaudio.IntBuffer{Data: w.ints, Format: w.format, SourceBitDepth: 16})
}

func (w *wavWriter) Close() error {
	return w.enc.Close()
}
