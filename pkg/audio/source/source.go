// ABOUTME: Source interface and file-type dispatch
// ABOUTME: Chooses a decoder from the file extension
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/decred/slog"
)

// Source provides interleaved s16le stereo PCM
type Source interface {
	// Read fills p with whole stereo frames and returns the bytes written.
	// It returns io.EOF once the input is exhausted.
	Read(p []byte) (int, error)

	// Format describes the decoded output (always 2 channels, 16 bits)
	Format() audio.Format

	// Title is a display name for the input
	Title() string

	// Close releases the underlying file
	Close() error
}

// Open returns a source for path. An empty path or "tone" yields an endless
// 440Hz test tone at 48kHz.
func Open(path string, log slog.Logger) (Source, error) {
	if log == nil {
		log = slog.Disabled
	}
	if path == "" || path == "tone" {
		return NewTone(DefaultToneRate, DefaultToneFrequency, 0), nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	var (
		src Source
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		src, err = NewMP3(path)
	case ".flac":
		src, err = NewFLAC(path)
	case ".wav":
		src, err = NewWAV(path)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac, .wav)", ext)
	}
	if err != nil {
		return nil, err
	}

	f := src.Format()
	log.Infof("Loaded %s: %s (%d Hz, %d-bit source)", f.Codec, src.Title(), f.SampleRate, f.BitDepth)
	return src, nil
}

func titleFromPath(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// wholeFrames trims n down to a multiple of the stereo frame size
func wholeFrames(n int) int {
	return n - n%audio.BytesPerFrame
}
