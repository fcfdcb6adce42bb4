// ABOUTME: Codec backend and session interfaces
// ABOUTME: Codec IDs, capability descriptors, parameters and frames
package codec

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
)

// ID identifies a codec
type ID int

const (
	None ID = iota
	Opus
	FLAC
	PCM
	PCMFloatPlanar
)

var idNames = map[ID]string{
	None:           "none",
	Opus:           "opus",
	FLAC:           "flac",
	PCM:            "pcm_s16le",
	PCMFloatPlanar: "pcm_f32p",
}

func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return fmt.Sprintf("ID(%d)", int(id))
}

// ParseID resolves a codec name as printed by ID.String. "pcm" is accepted
// as an alias for pcm_s16le.
func ParseID(name string) (ID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "pcm" {
		return PCM, nil
	}
	for id, n := range idNames {
		if id != None && n == name {
			return id, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

// Capabilities describes what a backend accepts
type Capabilities struct {
	// SampleFormats lists accepted input layouts, preferred first
	SampleFormats []audio.SampleFormat

	// SampleRates lists accepted rates; nil accepts any positive rate
	SampleRates []int

	// MaxSampleRate bounds rates when SampleRates is nil (0 = unbounded)
	MaxSampleRate int

	// FrameDuration is the fixed frame length the codec requires; zero
	// means the caller may choose
	FrameDuration time.Duration
}

// SupportsRate reports whether rate is accepted
func (c Capabilities) SupportsRate(rate int) bool {
	if rate <= 0 {
		return false
	}
	if c.SampleRates == nil {
		return c.MaxSampleRate == 0 || rate <= c.MaxSampleRate
	}
	return slices.Contains(c.SampleRates, rate)
}

// NearestRate returns rate when supported, otherwise the lowest supported
// rate above it, otherwise the highest supported rate
func (c Capabilities) NearestRate(rate int) int {
	if c.SupportsRate(rate) {
		return rate
	}
	if c.SampleRates == nil {
		return c.MaxSampleRate
	}
	best := 0
	for _, r := range c.SampleRates {
		if r > rate && (best == 0 || r < best) {
			best = r
		}
	}
	if best == 0 {
		best = slices.Max(c.SampleRates)
	}
	return best
}

// SupportsFormat reports whether f is accepted
func (c Capabilities) SupportsFormat(f audio.SampleFormat) bool {
	return slices.Contains(c.SampleFormats, f)
}

// PreferredFormat returns the first listed sample format
func (c Capabilities) PreferredFormat() audio.SampleFormat {
	if len(c.SampleFormats) == 0 {
		return audio.SampleFormatNone
	}
	return c.SampleFormats[0]
}

// FrameSize returns samples per channel for rate, or 0 when unrestricted
func (c Capabilities) FrameSize(rate int) int {
	if c.FrameDuration <= 0 {
		return 0
	}
	return int(int64(rate) * int64(c.FrameDuration) / int64(time.Second))
}

// Params configures a session
type Params struct {
	SampleRate   int
	Channels     int
	BitRate      int
	SampleFormat audio.SampleFormat
	FrameSize    int // samples per channel
}

func (p Params) validate(caps Capabilities) error {
	if p.Channels <= 0 || p.Channels > 8 {
		return fmt.Errorf("%w: %d channels", ErrInvalidArgument, p.Channels)
	}
	if p.FrameSize <= 0 {
		return fmt.Errorf("%w: frame size %d", ErrInvalidArgument, p.FrameSize)
	}
	if !caps.SupportsRate(p.SampleRate) {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupported, p.SampleRate)
	}
	if !caps.SupportsFormat(p.SampleFormat) {
		return fmt.Errorf("%w: sample format %s", ErrUnsupported, p.SampleFormat)
	}
	return nil
}

// Frame holds one frame of samples. Interleaved formats use a single plane
// of NumSamples*Channels samples; planar formats use one plane per channel.
type Frame struct {
	Format     audio.SampleFormat
	Channels   int
	NumSamples int // per channel
	Int16      [][]int16
	Float32    [][]float32
}

// NewFrame allocates a frame for the given layout
func NewFrame(format audio.SampleFormat, channels, numSamples int) *Frame {
	f := &Frame{Format: format, Channels: channels, NumSamples: numSamples}

	planes, perPlane := 1, numSamples*channels
	if format.IsPlanar() {
		planes, perPlane = channels, numSamples
	}

	switch format {
	case audio.SampleFormatS16, audio.SampleFormatS16P:
		f.Int16 = make([][]int16, planes)
		for i := range f.Int16 {
			f.Int16[i] = make([]int16, perPlane)
		}
	case audio.SampleFormatFLT, audio.SampleFormatFLTP:
		f.Float32 = make([][]float32, planes)
		for i := range f.Float32 {
			f.Float32[i] = make([]float32, perPlane)
		}
	}
	return f
}

func (f *Frame) check(p Params) error {
	if f.Format != p.SampleFormat || f.Channels != p.Channels {
		return fmt.Errorf("%w: frame is %s/%dch, session expects %s/%dch",
			ErrInvalidArgument, f.Format, f.Channels, p.SampleFormat, p.Channels)
	}
	if f.NumSamples != p.FrameSize {
		return fmt.Errorf("%w: frame has %d samples, session expects %d",
			ErrInvalidArgument, f.NumSamples, p.FrameSize)
	}
	return nil
}

// Backend opens codec sessions
type Backend interface {
	// Name identifies the codec library
	Name() string

	// Capabilities describes accepted input
	Capabilities() Capabilities

	// Open starts an encoding session
	Open(p Params) (Session, error)
}

// Session is an open encoding context
type Session interface {
	// Extradata returns out-of-band codec configuration, or nil
	Extradata() []byte

	// SendFrame submits a frame; nil signals end of stream
	SendFrame(f *Frame) error

	// ReceivePacket returns the next packet, ErrAgain when more input is
	// needed, or ErrEOF after end of stream. The slice is only valid until
	// the next call on the session.
	ReceivePacket() ([]byte, error)

	// Close releases the session
	Close() error
}
