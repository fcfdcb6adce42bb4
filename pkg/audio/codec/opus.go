// ABOUTME: Opus codec backend
// ABOUTME: Encodes interleaved float frames with libopus and builds OpusHead extradata
package codec

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	// maxOpusPacket is the largest packet libopus produces for one frame
	maxOpusPacket = 4000

	// opusPreSkip is the encoder lookahead at 48kHz written to OpusHead
	opusPreSkip = 312
)

type opusBackend struct{}

// NewOpus returns the libopus backend
func NewOpus() Backend {
	return opusBackend{}
}

func (opusBackend) Name() string { return "libopus" }

func (opusBackend) Capabilities() Capabilities {
	return Capabilities{
		SampleFormats: []audio.SampleFormat{audio.SampleFormatFLT},
		SampleRates:   []int{8000, 12000, 16000, 24000, 48000},
		FrameDuration: 20 * time.Millisecond,
	}
}

type opusSession struct {
	packetQueue
	params    Params
	encoder   *opus.Encoder
	scratch   []byte
	extradata []byte
}

// Open creates an encoder in audio mode at the requested bit rate
func (b opusBackend) Open(p Params) (Session, error) {
	if err := p.validate(b.Capabilities()); err != nil {
		return nil, err
	}
	if p.Channels > 2 {
		return nil, fmt.Errorf("%w: opus supports at most 2 channels", ErrUnsupported)
	}

	encoder, err := opus.NewEncoder(p.SampleRate, p.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create opus encoder: %v", ErrBackend, err)
	}
	if p.BitRate > 0 {
		if err := encoder.SetBitrate(p.BitRate); err != nil {
			return nil, fmt.Errorf("%w: failed to set bitrate %d: %v", ErrInvalidArgument, p.BitRate, err)
		}
	}

	return &opusSession{
		params:    p,
		encoder:   encoder,
		scratch:   make([]byte, maxOpusPacket),
		extradata: opusHead(p.Channels, p.SampleRate),
	}, nil
}

// opusHead builds the 19-byte identification header (RFC 7845 section 5.1)
func opusHead(channels, inputRate int) []byte {
	head := make([]byte, 19)
	copy(head, "OpusHead")
	head[8] = 1
	head[9] = byte(channels)
	binary.LittleEndian.PutUint16(head[10:], opusPreSkip)
	binary.LittleEndian.PutUint32(head[12:], uint32(inputRate))
	// output gain and channel mapping family stay zero
	return head
}

func (s *opusSession) Extradata() []byte {
	return s.extradata
}

func (s *opusSession) SendFrame(f *Frame) error {
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

	n, err := s.encoder.EncodeFloat32(f.Float32[0][:f.NumSamples*f.Channels], s.scratch)
	if err != nil {
		return fmt.Errorf("%w: opus encode: %v", ErrBackend, err)
	}
	pkt := make([]byte, n)
	copy(pkt, s.scratch[:n])
	s.push(pkt)
	return nil
}

func (s *opusSession) ReceivePacket() ([]byte, error) {
	return s.receive()
}

func (s *opusSession) Close() error {
	s.closed = true
	s.encoder = nil
	return nil
}
