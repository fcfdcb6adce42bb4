// ABOUTME: Null audio output
// ABOUTME: Paces the fill callback with a ticker and discards the audio
package output

import (
	"context"
	"sync"
	"time"

	"github.com/decred/slog"
)

type nullBackend struct {
	log slog.Logger
}

// NewNull returns a backend with no device. Streams call fill once per
// period from a goroutine, which makes it usable headless and in tests.
func NewNull(log slog.Logger) Backend {
	return &nullBackend{log: log}
}

func (b *nullBackend) Name() string { return "null" }

func (b *nullBackend) Open(cfg Config, fill FillFunc) (Stream, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	b.log.Infof("Audio output opened: %dHz, %d channels, S16 (null)",
		cfg.SampleRate, cfg.Channels)
	return &nullStream{
		fill:    fill,
		period:  cfg.period(),
		scratch: make([]byte, cfg.periodBytes()),
	}, nil
}

type nullStream struct {
	fill    FillFunc
	period  time.Duration
	scratch []byte

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *nullStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	return nil
}

func (s *nullStream) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fill(s.scratch)
		}
	}
}

// Stop waits for an in-flight callback to return
func (s *nullStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	return nil
}

func (s *nullStream) Close() error {
	return s.Stop()
}
