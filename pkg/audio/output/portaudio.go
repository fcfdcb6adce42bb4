//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform callback output using PortAudio
package output

import (
	"fmt"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/decred/slog"
	"github.com/gordonklaus/portaudio"
)

type portAudioBackend struct {
	log slog.Logger
}

// NewPortAudio returns the PortAudio backend
func NewPortAudio(log slog.Logger) Backend {
	return &portAudioBackend{log: log}
}

func (b *portAudioBackend) Name() string { return "portaudio" }

type portAudioStream struct {
	stream  *portaudio.Stream
	scratch []byte
}

// Open initializes PortAudio and opens the default output stream
func (b *portAudioBackend) Open(cfg Config, fill FillFunc) (Stream, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	framesPerBuffer := cfg.periodBytes() / (cfg.Channels * 2)
	s := &portAudioStream{scratch: make([]byte, cfg.periodBytes())}

	stream, err := portaudio.OpenDefaultStream(0, cfg.Channels, float64(cfg.SampleRate), framesPerBuffer,
		func(out []int16) {
			n := len(out) * 2
			if n > len(s.scratch) {
				// Only happens if the host ignores framesPerBuffer
				s.scratch = make([]byte, n)
			}
			fill(s.scratch[:n])
			audio.DecodeInt16(out, s.scratch[:n])
		})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	s.stream = stream

	b.log.Infof("Audio output opened: %dHz, %d channels, S16 (portaudio)",
		cfg.SampleRate, cfg.Channels)
	return s, nil
}

func (s *portAudioStream) Start() error {
	return s.stream.Start()
}

func (s *portAudioStream) Stop() error {
	return s.stream.Stop()
}

func (s *portAudioStream) Close() error {
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
