// ABOUTME: Frame-batching PCM encoder
// ABOUTME: Session lifecycle, input validation and packet draining
package encode

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/buffer"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/codec"
	"github.com/decred/slog"
	"github.com/google/uuid"
)

// DefaultFrameSize is used when the codec does not mandate a frame length
const DefaultFrameSize = 1024

var (
	// ErrNotInitialized is returned by Encode and Flush before Initialize
	ErrNotInitialized = errors.New("encoder not initialized")

	// ErrInputSize is returned when an input buffer is not exactly one frame
	ErrInputSize = errors.New("input buffer size does not match frame size")

	// ErrUnsupportedFormat is returned when the codec needs a sample layout
	// the encoder cannot convert to
	ErrUnsupportedFormat = errors.New("unsupported sample format")

	// ErrUnsupportedSampleRate is returned when the codec rejects the rate
	ErrUnsupportedSampleRate = errors.New("unsupported sample rate")
)

// Config holds encoder configuration
type Config struct {
	// Logger receives lifecycle messages and encode errors (default: disabled)
	Logger slog.Logger

	// Registry resolves codec IDs (default: codec.Default())
	Registry *codec.Registry
}

// Stats contains encoding counters
type Stats struct {
	Frames   uint64
	Packets  uint64
	BytesIn  uint64
	BytesOut uint64
	Errors   uint64
}

// Encoder converts PCM frames to codec packets. It is not safe for
// concurrent use, except for Stats.
type Encoder struct {
	pool     *buffer.Pool
	registry *codec.Registry
	log      slog.Logger

	id             codec.ID
	sampleRate     int
	bitRate        int
	format         audio.SampleFormat
	frameSize      int
	bytesPerSample int
	sessionID      uuid.UUID
	session        codec.Session
	frame          *codec.Frame

	frames   atomic.Uint64
	packets  atomic.Uint64
	bytesIn  atomic.Uint64
	bytesOut atomic.Uint64
	errs     atomic.Uint64
}

// New creates an uninitialized encoder that allocates packets from pool
func New(pool *buffer.Pool, config Config) *Encoder {
	log := config.Logger
	if log == nil {
		log = slog.Disabled
	}
	registry := config.Registry
	if registry == nil {
		registry = codec.Default()
	}
	return &Encoder{pool: pool, registry: registry, log: log}
}

// Initialize opens a codec session for stereo input at sampleRate. A bitRate
// of 0 leaves the codec default. An initialized encoder is deinitialized
// first, and any failure leaves the encoder uninitialized.
func (e *Encoder) Initialize(id codec.ID, sampleRate, bitRate int) error {
	e.Deinitialize()

	backend, err := e.registry.Lookup(id)
	if err != nil {
		return err
	}
	caps := backend.Capabilities()

	if !caps.SupportsRate(sampleRate) {
		return fmt.Errorf("%w: %s does not accept %dHz", ErrUnsupportedSampleRate, id, sampleRate)
	}
	if bitRate < 0 {
		return fmt.Errorf("invalid bit rate: %d", bitRate)
	}

	format := caps.PreferredFormat()
	if !convertible(format) {
		return fmt.Errorf("%w: %s wants %s", ErrUnsupportedFormat, id, format)
	}

	frameSize := caps.FrameSize(sampleRate)
	if frameSize == 0 {
		frameSize = DefaultFrameSize
	}

	session, err := backend.Open(codec.Params{
		SampleRate:   sampleRate,
		Channels:     audio.Channels,
		BitRate:      bitRate,
		SampleFormat: format,
		FrameSize:    frameSize,
	})
	if err != nil {
		return fmt.Errorf("failed to open %s session: %w", id, err)
	}

	e.id = id
	e.sampleRate = sampleRate
	e.bitRate = bitRate
	e.format = format
	e.frameSize = frameSize
	e.bytesPerSample = format.BytesPerSample()
	e.sessionID = uuid.New()
	e.session = session
	e.frame = codec.NewFrame(format, audio.Channels, frameSize)

	e.log.Infof("Encoder %s initialized: %s (%s) %dHz, %d bps, %s, %d samples/frame",
		e.sessionID, id, backend.Name(), sampleRate, bitRate, format, frameSize)
	return nil
}

// Deinitialize closes the session and resets the encoder. It is a no-op on
// an uninitialized encoder.
func (e *Encoder) Deinitialize() {
	if e.session == nil {
		return
	}
	if err := e.session.Close(); err != nil {
		e.log.Warnf("Encoder %s: session close error: %v", e.sessionID, err)
	}
	e.log.Debugf("Encoder %s deinitialized", e.sessionID)

	e.session = nil
	e.frame = nil
	e.id = codec.None
	e.sampleRate = 0
	e.bitRate = 0
	e.format = audio.SampleFormatNone
	e.frameSize = 0
	e.bytesPerSample = 0
	e.sessionID = uuid.Nil
}

// IsInitialized reports whether a session is open
func (e *Encoder) IsInitialized() bool { return e.session != nil }

// Codec returns the active codec, or codec.None
func (e *Encoder) Codec() codec.ID { return e.id }

// SampleRate returns the session sample rate, or 0
func (e *Encoder) SampleRate() int { return e.sampleRate }

// BitRate returns the requested bit rate, or 0
func (e *Encoder) BitRate() int { return e.bitRate }

// SamplesPerFrame returns the frame size in samples per channel, or 0
func (e *Encoder) SamplesPerFrame() int { return e.frameSize }

// SampleFormat returns the layout handed to the codec
func (e *Encoder) SampleFormat() audio.SampleFormat { return e.format }

// BytesPerSample returns the size of one sample in the codec layout
func (e *Encoder) BytesPerSample() int { return e.bytesPerSample }

// SessionID identifies the current session in logs, or uuid.Nil
func (e *Encoder) SessionID() uuid.UUID { return e.sessionID }

// InputBufferByteSize is the exact input size Encode accepts: one frame of
// interleaved stereo int16. It is 0 when uninitialized.
func (e *Encoder) InputBufferByteSize() int {
	return e.frameSize * audio.Channels * audio.BytesPerSample
}

// Encode converts one frame of PCM and returns the packets the codec emitted
// for it, in order. The caller owns the returned buffers and frees them to
// the pool. On error no buffers are returned; a size mismatch leaves the
// encoder usable.
func (e *Encoder) Encode(buf *buffer.Buffer) ([]*buffer.Buffer, error) {
	if e.session == nil {
		return nil, ErrNotInitialized
	}
	if buf == nil || buf.UsedSize() != e.InputBufferByteSize() {
		got := 0
		if buf != nil {
			got = buf.UsedSize()
		}
		e.errs.Add(1)
		e.log.Warnf("Encoder %s: got %d bytes, want %d", e.sessionID, got, e.InputBufferByteSize())
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInputSize, got, e.InputBufferByteSize())
	}

	if err := e.fillFrame(buf.Bytes()); err != nil {
		e.errs.Add(1)
		e.log.Errorf("Encoder %s: %v", e.sessionID, err)
		return nil, err
	}

	if err := e.session.SendFrame(e.frame); err != nil {
		e.errs.Add(1)
		e.log.Errorf("Encoder %s: send frame failed: %v (status %d)", e.sessionID, err, codec.StatusOf(err))
		return nil, fmt.Errorf("send frame: %w", err)
	}
	e.frames.Add(1)
	e.bytesIn.Add(uint64(buf.UsedSize()))

	return e.drain()
}

// Flush signals end of stream and returns any packets the codec was holding
// back. The session stays open but accepts no more frames; call Initialize
// to start a new stream.
func (e *Encoder) Flush() ([]*buffer.Buffer, error) {
	if e.session == nil {
		return nil, ErrNotInitialized
	}
	if err := e.session.SendFrame(nil); err != nil {
		if errors.Is(err, codec.ErrEOF) {
			return nil, nil
		}
		e.errs.Add(1)
		e.log.Errorf("Encoder %s: flush failed: %v", e.sessionID, err)
		return nil, fmt.Errorf("flush: %w", err)
	}
	return e.drain()
}

// drain collects packets until the codec asks for more input or ends
func (e *Encoder) drain() ([]*buffer.Buffer, error) {
	var packets []*buffer.Buffer
	for {
		pkt, err := e.session.ReceivePacket()
		if errors.Is(err, codec.ErrAgain) || errors.Is(err, codec.ErrEOF) {
			return packets, nil
		}
		if err != nil {
			for _, b := range packets {
				e.pool.FreeBuffer(b)
			}
			e.errs.Add(1)
			e.log.Errorf("Encoder %s: receive packet failed: %v (status %d)", e.sessionID, err, codec.StatusOf(err))
			return nil, fmt.Errorf("receive packet: %w", err)
		}

		b := e.pool.GetBuffer(len(pkt))
		copy(b.Bytes(), pkt)
		packets = append(packets, b)
		e.packets.Add(1)
		e.bytesOut.Add(uint64(len(pkt)))
	}
}

// HasExtradata reports whether the codec produced out-of-band configuration
func (e *Encoder) HasExtradata() bool {
	return e.session != nil && len(e.session.Extradata()) > 0
}

// Extradata returns a pool copy of the codec configuration, or nil. The
// caller frees it.
func (e *Encoder) Extradata() *buffer.Buffer {
	if !e.HasExtradata() {
		return nil
	}
	extradata := e.session.Extradata()
	b := e.pool.GetBuffer(len(extradata))
	copy(b.Bytes(), extradata)
	return b
}

// Stats returns a snapshot of the counters. Safe to call concurrently.
func (e *Encoder) Stats() Stats {
	return Stats{
		Frames:   e.frames.Load(),
		Packets:  e.packets.Load(),
		BytesIn:  e.bytesIn.Load(),
		BytesOut: e.bytesOut.Load(),
		Errors:   e.errs.Load(),
	}
}
