//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"

	"github.com/decred/slog"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

type portAudioBackend struct{}

// NewPortAudio returns a backend whose Open always fails
func NewPortAudio(log slog.Logger) Backend {
	return portAudioBackend{}
}

func (portAudioBackend) Name() string { return "portaudio" }

func (portAudioBackend) Open(Config, FillFunc) (Stream, error) {
	return nil, errPortAudioDisabled
}
