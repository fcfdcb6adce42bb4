// ABOUTME: Oto-based audio output implementation
// ABOUTME: Adapts the pull callback to oto's io.Reader players
package output

import (
	"fmt"
	"sync"

	"github.com/decred/slog"
	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process, so the first Open fixes the format
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

type otoBackend struct {
	log slog.Logger
}

// NewOto returns the oto backend
func NewOto(log slog.Logger) Backend {
	return &otoBackend{log: log}
}

func (b *otoBackend) Name() string { return "oto" }

// fillReader turns a FillFunc into the io.Reader oto pulls from. It never
// returns io.EOF; an empty queue reads as silence.
type fillReader struct {
	fill  FillFunc
	frame int
}

func (r *fillReader) Read(p []byte) (int, error) {
	n := len(p) - len(p)%r.frame
	if n == 0 {
		return 0, nil
	}
	r.fill(p[:n])
	return n, nil
}

type otoStream struct {
	player *oto.Player
}

// Open creates (or reuses) the process context and a player fed by fill
func (b *otoBackend) Open(cfg Config, fill FillFunc) (Stream, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, err := b.context(cfg)
	if err != nil {
		return nil, err
	}

	player := ctx.NewPlayer(&fillReader{fill: fill, frame: cfg.Channels * 2})
	player.SetBufferSize(cfg.periodBytes())

	b.log.Infof("Audio output opened: %dHz, %d channels, S16 (oto)",
		cfg.SampleRate, cfg.Channels)

	return &otoStream{player: player}, nil
}

func (b *otoBackend) context(cfg Config) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != cfg.SampleRate || otoChannels != cfg.Channels {
			return nil, fmt.Errorf("oto context already running at %dHz/%dch, cannot open %dHz/%dch",
				otoRate, otoChannels, cfg.SampleRate, cfg.Channels)
		}
		return otoCtx, nil
	}

	ctx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.period(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	otoCtx = ctx
	otoRate = cfg.SampleRate
	otoChannels = cfg.Channels
	b.log.Debugf("oto context ready")
	return ctx, nil
}

func (s *otoStream) Start() error {
	s.player.Play()
	return nil
}

func (s *otoStream) Stop() error {
	s.player.Pause()
	return nil
}

func (s *otoStream) Close() error {
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("failed to close oto player: %w", err)
	}
	return nil
}
