// ABOUTME: Codec backend package
// ABOUTME: Send-frame/receive-packet codec sessions with capability descriptors
// Package codec defines the interface between the encoder and codec
// libraries, and provides backends for Opus, FLAC and raw PCM.
//
// A Backend describes what it accepts (sample formats, sample rates, frame
// duration) and opens Sessions. A Session consumes one Frame at a time and
// yields zero or more packets; ReceivePacket returns ErrAgain when it needs
// more input and ErrEOF once a flushed session is drained.
//
// Errors carry a negative Status code that maps to a readable string:
//
//	if errors.Is(err, codec.ErrAgain) {
//	    // send the next frame
//	}
//
// Supported codecs: opus, flac, pcm_s16le, pcm_f32p
package codec
