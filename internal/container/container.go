// ABOUTME: Container writers for encoded packet streams
// ABOUTME: Ogg Opus, native FLAC, WAV and raw output selected by codec
package container

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/codec"
)

var errPacketTooLarge = errors.New("packet too large for a single ogg page")

// Writer stores encoded packets in a file format
type Writer interface {
	// WritePacket appends one codec packet
	WritePacket(pkt []byte) error

	// Close finalizes the format. It does not close the underlying writer.
	Close() error
}

// Stream describes the encoded stream being stored
type Stream struct {
	Codec            codec.ID
	Extradata        []byte
	SampleRate       int
	Channels         int
	SamplesPerPacket int // per channel
}

// New returns the writer for s.Codec
func New(w io.WriteSeeker, s Stream) (Writer, error) {
	switch s.Codec {
	case codec.Opus:
		return newOggOpus(w, s)
	case codec.FLAC:
		return newFLAC(w, s)
	case codec.PCM:
		return newWAV(w, s), nil
	case codec.PCMFloatPlanar:
		return &rawWriter{w: w}, nil
	default:
		return nil, fmt.Errorf("no container for codec %s", s.Codec)
	}
}

// Extension returns the conventional file extension for a codec
func Extension(id codec.ID) string {
	switch id {
	case codec.Opus:
		return ".opus"
	case codec.FLAC:
		return ".flac"
	case codec.PCM:
		return ".wav"
	default:
		return ".raw"
	}
}

// rawWriter concatenates packets
type rawWriter struct {
	w io.Writer
}

func (r *rawWriter) WritePacket(pkt []byte) error {
	_, err := r.w.Write(pkt)
	return err
}

func (r *rawWriter) Close() error { return nil }
