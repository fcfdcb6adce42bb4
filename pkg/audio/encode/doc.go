// ABOUTME: Audio encoder package
// ABOUTME: Batches s16le stereo PCM into codec frames and drains compressed packets
// Package encode turns fixed-size chunks of interleaved signed 16-bit stereo
// PCM into codec packets.
//
// Initialize picks a codec backend, negotiates its input sample format and
// frame size, and opens a session. Each Encode call takes exactly
// InputBufferByteSize bytes, converts them to the backend's layout (planar
// or interleaved, int16 or float) and returns the packets the codec emitted
// for that frame, zero or more, each in its own pool buffer.
//
// Supported codecs: opus, flac, pcm_s16le, pcm_f32p
//
// Example:
//
//	enc := encode.New(pool, encode.Config{Logger: log})
//	err := enc.Initialize(codec.Opus, 48000, 64000)
//	in := pool.GetBuffer(enc.InputBufferByteSize())
//	packets, err := enc.Encode(in)
package encode
