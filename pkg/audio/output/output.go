// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for callback-driven playback backends
package output

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/decred/slog"
)

// DefaultPeriod is the callback period requested when Config.Period is zero
const DefaultPeriod = 10 * time.Millisecond

// ErrUnknownBackend is returned by New for unregistered backend names
var ErrUnknownBackend = errors.New("unknown output backend")

// FillFunc supplies interleaved signed 16-bit little-endian PCM. It is called
// on the device goroutine and must write every byte of out.
type FillFunc func(out []byte)

// Config describes the stream to open. Samples are always signed 16-bit
// little-endian and interleaved.
type Config struct {
	SampleRate int
	Channels   int
	Period     time.Duration
}

func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", c.Channels)
	}
	return nil
}

func (c Config) period() time.Duration {
	if c.Period <= 0 {
		return DefaultPeriod
	}
	return c.Period
}

// periodBytes is the size of one period of audio
func (c Config) periodBytes() int {
	frames := int(int64(c.SampleRate) * int64(c.period()) / int64(time.Second))
	return max(frames, 1) * c.Channels * 2
}

// Backend opens playback streams on an audio subsystem
type Backend interface {
	// Name identifies the backend
	Name() string

	// Open prepares a stream that will call fill once started
	Open(cfg Config, fill FillFunc) (Stream, error)
}

// Stream is an open playback stream
type Stream interface {
	// Start begins invoking the fill callback
	Start() error

	// Stop pauses callbacks; the stream can be started again
	Stop() error

	// Close stops the stream and releases the device. No callback runs after
	// Close returns.
	Close() error
}

var constructors = map[string]func(slog.Logger) Backend{
	"malgo":     NewMalgo,
	"oto":       NewOto,
	"portaudio": NewPortAudio,
	"null":      NewNull,
}

// New returns the backend registered under name
func New(name string, log slog.Logger) (Backend, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, name, Names())
	}
	if log == nil {
		log = slog.Disabled
	}
	return ctor(log), nil
}

// Names lists the registered backends
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
