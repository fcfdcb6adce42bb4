// ABOUTME: Native FLAC file writer
// ABOUTME: Writes the stream header from extradata followed by frames
package container

import (
	"bytes"
	"errors"
	"io"
)

type flacWriter struct {
	w io.Writer
}

func newFLAC(w io.Writer, s Stream) (*flacWriter, error) {
	if !bytes.HasPrefix(s.Extradata, []byte("fLaC")) {
		return nil, errors.New("flac stream needs fLaC extradata")
	}
	if _, err := w.Write(s.Extradata); err != nil {
		return nil, err
	}
	return &flacWriter{w: w}, nil
}

func (f *flacWriter) WritePacket(pkt []byte) error {
	_, err := f.w.Write(pkt)
	return err
}

func (f *flacWriter) Close() error { return nil }
