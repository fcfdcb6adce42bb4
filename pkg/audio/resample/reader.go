// ABOUTME: io.Reader adapter that resamples s16le stereo PCM
// ABOUTME: Used where a consumer needs a rate the source does not provide
package resample

import (
	"errors"
	"io"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
)

const readChunkFrames = 1024

// Reader resamples s16le interleaved PCM read from an underlying reader
type Reader struct {
	src     io.Reader
	r       *Resampler
	raw     []byte
	in      []int16
	out     []int16
	pending []byte
	err     error
}

// NewReader wraps src, which yields PCM at inputRate with channels
// interleaved channels.
func NewReader(src io.Reader, inputRate, outputRate, channels int) *Reader {
	return &Reader{
		src: src,
		r:   New(inputRate, outputRate, channels),
		raw: make([]byte, readChunkFrames*channels*audio.BytesPerSample),
		in:  make([]int16, readChunkFrames*channels),
	}
}

// Read fills p with resampled whole frames
func (rd *Reader) Read(p []byte) (int, error) {
	frameBytes := rd.r.channels * audio.BytesPerSample
	for len(rd.pending) == 0 {
		if rd.err != nil {
			return 0, rd.err
		}
		n, err := io.ReadFull(rd.src, rd.raw)
		n -= n % frameBytes
		if n > 0 {
			samples := rd.in[:n/audio.BytesPerSample]
			audio.DecodeInt16(samples, rd.raw[:n])
			rd.out = rd.r.Process(rd.out[:0], samples)
			rd.pending = growBytes(rd.pending[:0], len(rd.out)*audio.BytesPerSample)
			audio.EncodeInt16(rd.pending, rd.out)
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		if err != nil {
			rd.err = err
		}
	}

	n := copy(p[:len(p)-len(p)%frameBytes], rd.pending)
	rd.pending = rd.pending[n:]
	return n, nil
}

func growBytes(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}
