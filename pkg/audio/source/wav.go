// ABOUTME: WAV file source
// ABOUTME: Reads integer PCM through go-audio/wav
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV reads from a PCM WAV file
type WAV struct {
	file     *os.File
	decoder  *wav.Decoder
	title    string
	rate     int
	channels int
	bitDepth int
	buf      *goaudio.IntBuffer
}

// NewWAV opens a 16, 24 or 32-bit mono or stereo WAV file
func NewWAV(path string) (*WAV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		f.Close()
		return nil, errors.New("input is not a valid WAV audio file")
	}
	if decoder.BitDepth != 16 && decoder.BitDepth != 24 && decoder.BitDepth != 32 {
		f.Close()
		return nil, fmt.Errorf("unsupported bit depth: %d", decoder.BitDepth)
	}
	if decoder.NumChans < 1 {
		f.Close()
		return nil, fmt.Errorf("unsupported number of channels: %d", decoder.NumChans)
	}

	return &WAV{
		file:     f,
		decoder:  decoder,
		title:    titleFromPath(path),
		rate:     int(decoder.SampleRate),
		channels: int(decoder.NumChans),
		bitDepth: int(decoder.BitDepth),
	}, nil
}

func (s *WAV) Read(p []byte) (int, error) {
	frames := len(p) / audio.BytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	want := frames * s.channels
	if s.buf == nil || cap(s.buf.Data) < want {
		s.buf = &goaudio.IntBuffer{
			Data:   make([]int, want),
			Format: &goaudio.Format{SampleRate: s.rate, NumChannels: s.channels},
		}
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("wav read: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	got := n / s.channels
	samples := make([]int16, got*audio.Channels)
	for i := 0; i < got; i++ {
		left := s.buf.Data[i*s.channels]
		right := left
		if s.channels > 1 {
			right = s.buf.Data[i*s.channels+1]
		}
		samples[i*2] = audio.SampleToInt16(int32(left), s.bitDepth)
		samples[i*2+1] = audio.SampleToInt16(int32(right), s.bitDepth)
	}
	return audio.EncodeInt16(p, samples), nil
}

func (s *WAV) Format() audio.Format {
	return audio.Format{Codec: "wav", SampleRate: s.rate, Channels: audio.Channels, BitDepth: s.bitDepth}
}

func (s *WAV) Title() string { return s.title }

func (s *WAV) Close() error {
	return s.file.Close()
}
