// ABOUTME: Raw PCM codec backends
// ABOUTME: pcm_s16le (interleaved int16) and pcm_f32p (planar float32) packets
package codec

import (
	"encoding/binary"
	"math"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
)

type pcmBackend struct {
	format audio.SampleFormat
}

// NewPCM returns the interleaved 16-bit little-endian PCM backend
func NewPCM() Backend {
	return pcmBackend{format: audio.SampleFormatS16}
}

// NewPCMFloatPlanar returns a backend emitting planar float32 little-endian
// packets: all of channel 0, then all of channel 1.
func NewPCMFloatPlanar() Backend {
	return pcmBackend{format: audio.SampleFormatFLTP}
}

func (b pcmBackend) Name() string {
	if b.format == audio.SampleFormatFLTP {
		return "pcm_f32p"
	}
	return "pcm_s16le"
}

func (b pcmBackend) Capabilities() Capabilities {
	return Capabilities{SampleFormats: []audio.SampleFormat{b.format}}
}

type pcmSession struct {
	packetQueue
	params Params
}

func (b pcmBackend) Open(p Params) (Session, error) {
	if err := p.validate(b.Capabilities()); err != nil {
		return nil, err
	}
	return &pcmSession{params: p}, nil
}

func (s *pcmSession) Extradata() []byte { return nil }

func (s *pcmSession) SendFrame(f *Frame) error {
	if err := s.accepting(); err != nil {
		return err
	}
	if f == nil {
		s.eof = true
		return nil
	}
	if err := f.check(s.params); err != nil {
		return err
	}

	var pkt []byte
	switch f.Format {
	case audio.SampleFormatS16:
		samples := f.Int16[0][:f.NumSamples*f.Channels]
		pkt = make([]byte, len(samples)*2)
		audio.EncodeInt16(pkt, samples)
	case audio.SampleFormatFLTP:
		pkt = make([]byte, 0, f.NumSamples*f.Channels*4)
		for _, plane := range f.Float32 {
			for _, v := range plane[:f.NumSamples] {
				pkt = binary.LittleEndian.AppendUint32(pkt, math.Float32bits(v))
			}
		}
	}
	s.push(pkt)
	return nil
}

func (s *pcmSession) ReceivePacket() ([]byte, error) {
	return s.receive()
}

func (s *pcmSession) Close() error {
	s.closed = true
	return nil
}
