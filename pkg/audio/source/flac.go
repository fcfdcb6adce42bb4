// ABOUTME: FLAC file source
// ABOUTME: Decodes frames with mewkiz/flac and narrows them to s16le stereo
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLAC reads from a FLAC file
type FLAC struct {
	file     *os.File
	stream   *flac.Stream
	title    string
	rate     int
	bitDepth int
	pending  []byte
	eof      bool
}

// NewFLAC opens a FLAC file
func NewFLAC(path string) (*FLAC, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	return &FLAC{
		file:     f,
		stream:   stream,
		title:    titleFromPath(path),
		rate:     int(stream.Info.SampleRate),
		bitDepth: int(stream.Info.BitsPerSample),
	}, nil
}

func (s *FLAC) Read(p []byte) (int, error) {
	p = p[:wholeFrames(len(p))]
	written := 0
	for written < len(p) {
		if len(s.pending) == 0 {
			if s.eof {
				break
			}
			if err := s.decodeNext(); err != nil {
				return written, err
			}
			continue
		}
		n := copy(p[written:], s.pending)
		s.pending = s.pending[n:]
		written += n
	}
	if written == 0 && s.eof {
		return 0, io.EOF
	}
	return written, nil
}

// decodeNext parses one frame into pending
func (s *FLAC) decodeNext() error {
	frame, err := s.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		s.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("flac frame: %w", err)
	}

	left := frame.Subframes[0].Samples
	right := left
	if len(frame.Subframes) > 1 {
		right = frame.Subframes[1].Samples
	}

	samples := make([]int16, len(left)*audio.Channels)
	for i := range left {
		samples[i*2] = audio.SampleToInt16(left[i], s.bitDepth)
		samples[i*2+1] = audio.SampleToInt16(right[i], s.bitDepth)
	}
	s.pending = make([]byte, len(samples)*2)
	audio.EncodeInt16(s.pending, samples)
	return nil
}

func (s *FLAC) Format() audio.Format {
	return audio.Format{Codec: "flac", SampleRate: s.rate, Channels: audio.Channels, BitDepth: s.bitDepth}
}

func (s *FLAC) Title() string { return s.title }

func (s *FLAC) Close() error {
	return s.file.Close()
}
