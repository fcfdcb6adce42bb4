// ABOUTME: FLAC codec backend
// ABOUTME: Encodes planar int16 frames with mewkiz/flac, STREAMINFO as extradata
package codec

import (
	"bytes"
	"fmt"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// flacMaxSampleRate is the largest rate a STREAMINFO block can carry
const flacMaxSampleRate = 655350

type flacBackend struct{}

// NewFLAC returns the FLAC backend. Each block is run through the encoder's
// fixed-predictor analysis, so silence collapses to constant subframes.
func NewFLAC() Backend {
	return flacBackend{}
}

func (flacBackend) Name() string { return "mewkiz-flac" }

func (flacBackend) Capabilities() Capabilities {
	return Capabilities{
		SampleFormats: []audio.SampleFormat{audio.SampleFormatS16P},
		MaxSampleRate: flacMaxSampleRate,
	}
}

type flacSession struct {
	packetQueue
	params    Params
	out       bytes.Buffer
	encoder   *flac.Encoder
	channels  frame.Channels
	subframes []*frame.Subframe
	extradata []byte
}

// Open writes the stream header into the extradata and prepares the
// subframe buffers reused for every block.
func (b flacBackend) Open(p Params) (Session, error) {
	if err := p.validate(b.Capabilities()); err != nil {
		return nil, err
	}
	if p.FrameSize > 65535 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidArgument, p.FrameSize)
	}

	var channels frame.Channels
	switch p.Channels {
	case 1:
		channels = frame.ChannelsMono
	case 2:
		channels = frame.ChannelsLR
	default:
		return nil, fmt.Errorf("%w: flac backend supports 1 or 2 channels", ErrUnsupported)
	}

	s := &flacSession{params: p, channels: channels}
	info := &meta.StreamInfo{
		BlockSizeMin:  uint16(p.FrameSize),
		BlockSizeMax:  uint16(p.FrameSize),
		SampleRate:    uint32(p.SampleRate),
		NChannels:     uint8(p.Channels),
		BitsPerSample: 16,
	}
	encoder, err := flac.NewEncoder(&s.out, info)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create flac encoder: %v", ErrBackend, err)
	}
	s.encoder = encoder
	s.extradata = bytes.Clone(s.out.Bytes())
	s.out.Reset()

	s.subframes = make([]*frame.Subframe, p.Channels)
	for i := range s.subframes {
		s.subframes[i] = &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   make([]int32, p.FrameSize),
			NSamples:  p.FrameSize,
		}
	}
	return s, nil
}

func (s *flacSession) Extradata() []byte {
	return s.extradata
}

func (s *flacSession) SendFrame(f *Frame) error {
	if err := s.accepting(); err != nil {
		return err
	}
	if f == nil {
		s.eof = true
		if err := s.encoder.Close(); err != nil {
			return fmt.Errorf("%w: flac close: %v", ErrBackend, err)
		}
		s.drain()
		return nil
	}
	if err := f.check(s.params); err != nil {
		return err
	}

	for ch, sub := range s.subframes {
		// WriteFrame analyzes in place and skips anything not marked verbatim.
		sub.SubHeader = frame.SubHeader{Pred: frame.PredVerbatim}
		for i, v := range f.Int16[ch][:f.NumSamples] {
			sub.Samples[i] = int32(v)
		}
	}

	fr := &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(f.NumSamples),
			SampleRate:        uint32(s.params.SampleRate),
			Channels:          s.channels,
			BitsPerSample:     16,
		},
		Subframes: s.subframes,
	}
	if err := s.encoder.WriteFrame(fr); err != nil {
		return fmt.Errorf("%w: flac write frame: %v", ErrBackend, err)
	}
	s.drain()
	return nil
}

// drain moves whatever the encoder wrote into a packet
func (s *flacSession) drain() {
	if s.out.Len() == 0 {
		return
	}
	s.push(bytes.Clone(s.out.Bytes()))
	s.out.Reset()
}

func (s *flacSession) ReceivePacket() ([]byte, error) {
	return s.receive()
}

func (s *flacSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.eof {
		if err := s.encoder.Close(); err != nil {
			return fmt.Errorf("%w: flac close: %v", ErrBackend, err)
		}
	}
	return nil
}
