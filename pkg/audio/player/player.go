// ABOUTME: Player lifecycle, producer entry point and device fill callback
// ABOUTME: Owns the playback queue behind a single store lock
package player

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/buffer"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/output"
	"github.com/decred/slog"
)

var (
	// ErrNotInitialized is returned by operations that need an open device
	ErrNotInitialized = errors.New("player not initialized")

	// ErrQueueFull signals backpressure: the returned count is short
	ErrQueueFull = errors.New("playback queue full")

	// ErrInvalidBufferSize is returned for a bad min/max buffer pair
	ErrInvalidBufferSize = errors.New("invalid buffer size")

	// ErrInvalidSampleRate is returned for a non-positive sample rate
	ErrInvalidSampleRate = errors.New("invalid sample rate")
)

// Config holds player configuration
type Config struct {
	// Logger receives lifecycle and backpressure messages (default: disabled)
	Logger slog.Logger

	// Overflow selects what QueueData does when a chunk does not fit
	Overflow OverflowPolicy

	// Period is the requested device callback period (default: output.DefaultPeriod)
	Period time.Duration

	// Volume is the initial volume 0-100 (default: 100)
	Volume int
}

// Stats contains playback counters
type Stats struct {
	Queued    int    // unread bytes
	Capacity  int    // current store size
	Written   uint64 // bytes accepted by QueueData
	Played    uint64 // queued bytes handed to the device
	Silence   uint64 // zero bytes inserted on underrun
	Rejected  uint64 // bytes refused by QueueData
	Dropped   uint64 // unread bytes discarded by OverflowDropOldest
	Underruns uint64 // times the queue ran dry while the device wanted audio
	Callbacks uint64
}

// Player streams queued PCM to an output backend. All methods are safe for
// concurrent use.
type Player struct {
	backend output.Backend
	log     slog.Logger
	policy  OverflowPolicy
	period  time.Duration

	// ctlMu serializes lifecycle transitions. The device callback never takes
	// it, so the stream can be closed while holding it.
	ctlMu   sync.Mutex
	stream  output.Stream
	playing atomic.Bool

	// mu guards everything below and is the only lock the callback takes.
	mu         sync.Mutex
	q          *queue
	sampleRate int
	volume     int
	muted      bool
	dry        bool
	stats      Stats
}

// New creates a player that will open streams on backend
func New(backend output.Backend, config Config) *Player {
	log := config.Logger
	if log == nil {
		log = slog.Disabled
	}
	volume := config.Volume
	if volume <= 0 || volume > 100 {
		volume = 100
	}
	return &Player{
		backend: backend,
		log:     log,
		policy:  config.Overflow,
		period:  config.Period,
		volume:  volume,
	}
}

// Initialize opens the output device at sampleRate (stereo, signed 16-bit)
// and allocates a queue that starts at minBufferSize bytes and may hold up to
// maxBufferSize unread bytes. Playback does not start until Play. An
// initialized player is deinitialized first.
func (p *Player) Initialize(sampleRate, minBufferSize, maxBufferSize int) error {
	p.ctlMu.Lock()
	defer p.ctlMu.Unlock()

	if p.stream != nil {
		p.deinitializeLocked()
	}

	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if minBufferSize < 0 || maxBufferSize <= 0 || minBufferSize > maxBufferSize {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidBufferSize, minBufferSize, maxBufferSize)
	}

	stream, err := p.backend.Open(output.Config{
		SampleRate: sampleRate,
		Channels:   audio.Channels,
		Period:     p.period,
	}, p.fillData)
	if err != nil {
		return fmt.Errorf("failed to open %s output: %w", p.backend.Name(), err)
	}

	// QueueData only succeeds once the device is open
	p.mu.Lock()
	p.q = newQueue(minBufferSize, maxBufferSize)
	p.sampleRate = sampleRate
	p.dry = true
	p.stats = Stats{}
	p.mu.Unlock()
	p.stream = stream

	p.log.Infof("Player initialized: %dHz, buffer %d-%d bytes, overflow=%s",
		sampleRate, minBufferSize, maxBufferSize, p.policy)
	return nil
}

// Deinitialize stops playback, closes the device and releases the queue.
// It is a no-op on an uninitialized player.
func (p *Player) Deinitialize() {
	p.ctlMu.Lock()
	defer p.ctlMu.Unlock()
	p.deinitializeLocked()
}

// deinitializeLocked must hold ctlMu and must not hold mu: closing the
// stream waits for an in-flight callback, which needs mu.
func (p *Player) deinitializeLocked() {
	if p.stream == nil {
		return
	}

	if err := p.stream.Close(); err != nil {
		p.log.Warnf("Output close error: %v", err)
	}
	p.stream = nil
	p.playing.Store(false)

	p.mu.Lock()
	p.q = nil
	p.sampleRate = 0
	p.mu.Unlock()

	p.log.Infof("Player deinitialized")
}

// IsInitialized reports whether the device is open
func (p *Player) IsInitialized() bool {
	p.ctlMu.Lock()
	defer p.ctlMu.Unlock()
	return p.stream != nil
}

// SampleRate returns the device rate, or 0 when uninitialized
func (p *Player) SampleRate() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sampleRate
}

// QueueData appends buf's valid bytes to the playback queue and returns how
// many were accepted. When the chunk does not fit the count is short and the
// error wraps ErrQueueFull; data already queued is never disturbed except
// under OverflowDropOldest, where a chunk larger than the queue keeps only its
// newest bytes. buf remains owned by the caller.
func (p *Player) QueueData(buf *buffer.Buffer) (int, error) {
	if buf == nil {
		return 0, nil
	}
	data := buf.Bytes()

	p.mu.Lock()
	if p.q == nil {
		p.mu.Unlock()
		return 0, ErrNotInitialized
	}
	n, dropped := p.q.write(data, p.policy)
	p.stats.Written += uint64(n)
	p.stats.Rejected += uint64(len(data) - n)
	p.stats.Dropped += uint64(dropped)
	if n > 0 {
		p.dry = false
	}
	queued := p.q.len()
	p.mu.Unlock()

	if dropped > 0 {
		p.log.Debugf("Dropped %d queued bytes to fit %d new bytes", dropped, n)
	}
	if n < len(data) {
		p.log.Tracef("Queue full: accepted %d of %d bytes (%d queued)", n, len(data), queued)
		return n, fmt.Errorf("%w: accepted %d of %d bytes", ErrQueueFull, n, len(data))
	}
	return n, nil
}

// fillData is the device callback. It copies queued bytes into out,
// zero-fills any shortfall and applies software volume. It runs on the
// device goroutine and must not block on anything but mu.
func (p *Player) fillData(out []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.q == nil {
		clear(out)
		return
	}

	n := p.q.read(out)
	p.stats.Callbacks++
	p.stats.Played += uint64(n)
	if short := len(out) - n; short > 0 {
		p.stats.Silence += uint64(short)
		if !p.dry {
			p.stats.Underruns++
			p.dry = true
		}
	}

	if multiplier := getVolumeMultiplier(p.volume, p.muted); multiplier != 1.0 {
		applyVolume(out[:n], multiplier)
	}
}

// Play starts the device callback
func (p *Player) Play() error {
	p.ctlMu.Lock()
	defer p.ctlMu.Unlock()

	if p.stream == nil {
		return ErrNotInitialized
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	p.playing.Store(true)
	p.log.Debugf("Playback started")
	return nil
}

// Stop pauses the device callback; queued audio is kept
func (p *Player) Stop() error {
	p.ctlMu.Lock()
	defer p.ctlMu.Unlock()

	if p.stream == nil {
		return ErrNotInitialized
	}
	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	p.playing.Store(false)
	p.log.Debugf("Playback stopped")
	return nil
}

// IsPlaying reports whether the device callback is running
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

// Flush discards all queued audio and shrinks the store back to its minimum
// size. The device keeps running and plays silence.
func (p *Player) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.q == nil {
		return
	}
	discarded := p.q.len()
	p.q.reset()
	p.dry = true
	p.log.Debugf("Flushed %d queued bytes", discarded)
}

// Queued returns the number of unread bytes
func (p *Player) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.q == nil {
		return 0
	}
	return p.q.len()
}

// QueuedDuration converts Queued to playback time
func (p *Player) QueuedDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.q == nil {
		return 0
	}
	return audio.DurationForBytes(p.sampleRate, p.q.len())
}

// Stats returns a snapshot of the playback counters
func (p *Player) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	if p.q != nil {
		s.Queued = p.q.len()
		s.Capacity = len(p.q.buf)
	}
	return s
}
