// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Drives the fill callback from the miniaudio device thread
package output

import (
	"fmt"

	"github.com/decred/slog"
	"github.com/gen2brain/malgo"
)

type malgoBackend struct {
	log slog.Logger
}

// NewMalgo returns the miniaudio backend
func NewMalgo(log slog.Logger) Backend {
	return &malgoBackend{log: log}
}

func (b *malgoBackend) Name() string { return "malgo" }

type malgoStream struct {
	log      slog.Logger
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
}

// Open initializes a context and a 16-bit playback device
func (b *malgoBackend) Open(cfg Config, fill FillFunc) (Stream, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		b.log.Tracef("miniaudio: %s", msg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = uint32(cfg.period().Milliseconds())
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		fill(pOutputSample)
	}
	callbacks := malgo.DeviceCallbacks{
		Data: malgo.DataProc(onSamples),
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		freeContext(b.log, ctx)
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	b.log.Infof("Audio output opened: %dHz, %d channels, S16 (malgo)",
		cfg.SampleRate, cfg.Channels)

	return &malgoStream{log: b.log, malgoCtx: ctx, device: device}, nil
}

func (s *malgoStream) Start() error {
	if s.device.IsStarted() {
		return nil
	}
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	return nil
}

func (s *malgoStream) Stop() error {
	if !s.device.IsStarted() {
		return nil
	}
	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	return nil
}

// Close stops and uninitializes the device, then frees the context
func (s *malgoStream) Close() error {
	if s.device != nil {
		if err := s.device.Stop(); err != nil {
			s.log.Warnf("Device stop error: %v", err)
		}
		s.device.Uninit()
		s.device = nil
	}
	if s.malgoCtx != nil {
		freeContext(s.log, s.malgoCtx)
		s.malgoCtx = nil
	}
	return nil
}

func freeContext(log slog.Logger, ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		log.Warnf("malgo context uninit error: %v", err)
	}
	ctx.Free()
}
