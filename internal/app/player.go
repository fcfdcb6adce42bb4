// ABOUTME: Player application orchestration
// ABOUTME: Feeds a source into the playback queue and drives TUI and metrics
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Resonate-Protocol/pcmpipe/internal/config"
	"github.com/Resonate-Protocol/pcmpipe/internal/logging"
	"github.com/Resonate-Protocol/pcmpipe/internal/metrics"
	"github.com/Resonate-Protocol/pcmpipe/internal/ui"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/buffer"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/output"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/player"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/source"
	"github.com/decred/slog"
)

const (
	// chunkDuration is how much audio the producer reads per QueueData
	chunkDuration = 20 * time.Millisecond

	// retryInterval is the producer's wait when the queue is full
	retryInterval = 10 * time.Millisecond

	statusInterval = 5 * time.Second
)

// Player plays one source through an output backend
type Player struct {
	cfg     config.Config
	log     slog.Logger
	logs    *logging.Backend
	pool    *buffer.Pool
	src     source.Source
	backend output.Backend
	player  *player.Player
}

// NewPlayer wires the playback pipeline. Nothing is opened until Run.
func NewPlayer(cfg config.Config, src source.Source, backend output.Backend, logs *logging.Backend) *Player {
	p := player.New(backend, player.Config{
		Logger:   logs.Logger(logging.SubsysPlayer),
		Overflow: cfg.OverflowPolicy(),
		Volume:   cfg.Volume,
	})
	return &Player{
		cfg:     cfg,
		log:     logs.Logger(logging.SubsysMain),
		logs:    logs,
		pool:    buffer.NewPool(),
		src:     src,
		backend: backend,
		player:  p,
	}
}

// Audio exposes the underlying audio player
func (a *Player) Audio() *player.Player {
	return a.player
}

// Run plays until the source is exhausted and the queue has drained, the
// user quits the TUI, or ctx is done.
func (a *Player) Run(ctx context.Context, useTUI bool) error {
	format := a.src.Format()
	minBytes, maxBytes := a.cfg.BufferBytes(format.SampleRate)
	if err := a.player.Initialize(format.SampleRate, minBytes, maxBytes); err != nil {
		return err
	}
	defer a.player.Deinitialize()

	if err := a.player.Play(); err != nil {
		return err
	}
	a.log.Infof("Playing %s (%dHz) on %s", a.src.Title(), format.SampleRate, a.backend.Name())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.MetricsAddr != "" {
		srv, err := metrics.NewServer(a.cfg.MetricsAddr,
			metrics.NewCollector(a.player, a.pool, nil), a.logs.Logger(logging.SubsysMetrics))
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		go func() {
			if err := srv.Run(ctx); err != nil {
				a.log.Errorf("Metrics server failed: %v", err)
			}
		}()
	}

	fed := make(chan error, 1)
	go func() { fed <- a.feed(ctx) }()

	if useTUI {
		return a.runTUI(ctx, cancel, fed)
	}
	return a.runHeadless(ctx, fed)
}

func (a *Player) runTUI(ctx context.Context, cancel context.CancelFunc, fed <-chan error) error {
	tui := ui.New(a.player, ui.Info{
		Title:   a.src.Title(),
		Format:  a.src.Format(),
		Backend: a.backend.Name(),
	})

	go func() {
		select {
		case err := <-fed:
			tui.Send(ui.StatusMsg{Finished: err == nil, Err: err})
		case <-ctx.Done():
		}
	}()
	go func() {
		<-ctx.Done()
		tui.Quit()
	}()

	err := tui.Run()
	cancel()
	return err
}

func (a *Player) runHeadless(ctx context.Context, fed <-chan error) error {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-fed:
			if err != nil {
				return err
			}
			a.log.Infof("Source finished, draining %v of queued audio", a.player.QueuedDuration())
			return a.drain(ctx)
		case <-ticker.C:
			a.logStatus()
		case <-ctx.Done():
			return nil
		}
	}
}

// drain waits for the queue to empty
func (a *Player) drain(ctx context.Context) error {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for a.player.Queued() > 0 {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
	a.logStatus()
	return nil
}

func (a *Player) logStatus() {
	s := a.player.Stats()
	a.log.Infof("Queue %d/%d bytes (%v), played %d, silence %d, underruns %d, rejected %d, dropped %d",
		s.Queued, s.Capacity, a.player.QueuedDuration(), s.Played, s.Silence, s.Underruns, s.Rejected, s.Dropped)
}

// feed reads the source in chunkDuration pieces and queues them, waiting
// while the queue is full. It returns nil at end of input.
func (a *Player) feed(ctx context.Context) error {
	chunk := audio.BytesForDuration(a.src.Format().SampleRate, chunkDuration)
	buf := a.pool.GetBuffer(chunk)
	defer a.pool.FreeBuffer(buf)

	for {
		n, readErr := a.src.Read(buf.Data()[:chunk])
		if n > 0 {
			buf.SetUsedSize(n)
			if err := a.queue(ctx, buf); err != nil {
				return err
			}
		}
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w", a.src.Title(), readErr)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// queue hands buf to the player, shifting out accepted bytes and retrying
// until everything is queued
func (a *Player) queue(ctx context.Context, buf *buffer.Buffer) error {
	for buf.UsedSize() > 0 {
		accepted, err := a.player.QueueData(buf)
		if err != nil && !errors.Is(err, player.ErrQueueFull) {
			return err
		}
		if accepted > 0 {
			rest := buf.UsedSize() - accepted
			data := buf.Data()
			copy(data, data[accepted:accepted+rest])
			buf.SetUsedSize(rest)
		}
		if buf.UsedSize() == 0 {
			return nil
		}

		select {
		case <-time.After(retryInterval):
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
