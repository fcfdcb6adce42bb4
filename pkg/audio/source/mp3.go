// ABOUTME: MP3 file source
// ABOUTME: go-mp3 already decodes to s16le stereo
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3 reads from an MP3 file
type MP3 struct {
	file    *os.File
	decoder *mp3.Decoder
	title   string
}

// NewMP3 opens an MP3 file
func NewMP3(path string) (*MP3, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	return &MP3{file: f, decoder: decoder, title: titleFromPath(path)}, nil
}

func (s *MP3) Read(p []byte) (int, error) {
	p = p[:wholeFrames(len(p))]
	n, err := io.ReadFull(s.decoder, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return wholeFrames(n), io.EOF
	}
	return n, err
}

func (s *MP3) Format() audio.Format {
	return audio.Format{Codec: "mp3", SampleRate: s.decoder.SampleRate(), Channels: audio.Channels, BitDepth: 16}
}

func (s *MP3) Title() string { return s.title }

func (s *MP3) Close() error {
	return s.file.Close()
}
