// ABOUTME: File encoding pipeline
// ABOUTME: Source -> optional resample -> Encoder -> container writer
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/pcmpipe/internal/container"
	"github.com/Resonate-Protocol/pcmpipe/internal/logging"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/buffer"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/codec"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/encode"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/resample"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/source"
)

// EncodeJob describes one file conversion
type EncodeJob struct {
	Codec   codec.ID
	BitRate int
	Source  source.Source
	Out     io.WriteSeeker
}

// EncodeResult summarizes a finished job
type EncodeResult struct {
	SampleRate int
	Resampled  bool
	Stats      encode.Stats
	Pool       buffer.Stats
}

// Encode runs job to completion or until ctx is done. The source is read in
// encoder frames and the final partial frame is zero padded.
func Encode(ctx context.Context, job EncodeJob, logs *logging.Backend) (EncodeResult, error) {
	log := logs.Logger(logging.SubsysMain)
	registry := codec.Default()
	backend, err := registry.Lookup(job.Codec)
	if err != nil {
		return EncodeResult{}, err
	}

	srcRate := job.Source.Format().SampleRate
	rate := backend.Capabilities().NearestRate(srcRate)
	var in io.Reader = job.Source
	if rate != srcRate {
		log.Infof("%s does not support %dHz, resampling to %dHz", job.Codec, srcRate, rate)
		in = resample.NewReader(job.Source, srcRate, rate, audio.Channels)
	}

	pool := buffer.NewPool()
	enc := encode.New(pool, encode.Config{
		Logger:   logs.Logger(logging.SubsysEncoder),
		Registry: registry,
	})
	if err := enc.Initialize(job.Codec, rate, job.BitRate); err != nil {
		return EncodeResult{}, err
	}
	defer enc.Deinitialize()

	var extradata []byte
	if enc.HasExtradata() {
		b := enc.Extradata()
		extradata = append([]byte(nil), b.Bytes()...)
		pool.FreeBuffer(b)
	}
	w, err := container.New(job.Out, container.Stream{
		Codec:            job.Codec,
		Extradata:        extradata,
		SampleRate:       rate,
		Channels:         audio.Channels,
		SamplesPerPacket: enc.SamplesPerFrame(),
	})
	if err != nil {
		return EncodeResult{}, err
	}

	writeAll := func(packets []*buffer.Buffer) error {
		var werr error
		for _, p := range packets {
			if werr == nil {
				werr = w.WritePacket(p.Bytes())
			}
			pool.FreeBuffer(p)
		}
		return werr
	}

	size := enc.InputBufferByteSize()
	frame := pool.GetBuffer(size)
	defer pool.FreeBuffer(frame)

	for ctx.Err() == nil {
		n, readErr := io.ReadFull(in, frame.Bytes())
		if n == 0 && (errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF)) {
			break
		}
		if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) {
			return EncodeResult{}, fmt.Errorf("read %s: %w", job.Source.Title(), readErr)
		}
		clear(frame.Bytes()[n:])

		packets, err := enc.Encode(frame)
		if err != nil {
			return EncodeResult{}, err
		}
		if err := writeAll(packets); err != nil {
			return EncodeResult{}, fmt.Errorf("write packet: %w", err)
		}
		if readErr != nil {
			break
		}
	}

	packets, err := enc.Flush()
	if err != nil {
		return EncodeResult{}, err
	}
	if err := writeAll(packets); err != nil {
		return EncodeResult{}, fmt.Errorf("write packet: %w", err)
	}
	if err := w.Close(); err != nil {
		return EncodeResult{}, fmt.Errorf("finalize container: %w", err)
	}

	stats := enc.Stats()
	log.Infof("Encoded %d frames into %d packets (%d bytes) with %s at %dHz",
		stats.Frames, stats.Packets, stats.BytesOut, job.Codec, rate)
	return EncodeResult{
		SampleRate: rate,
		Resampled:  rate != srcRate,
		Stats:      stats,
		Pool:       pool.Stats(),
	}, ctx.Err()
}
