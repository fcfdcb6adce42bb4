// ABOUTME: PCM source package for files and test tones
// ABOUTME: Decodes MP3, FLAC and WAV to interleaved s16le stereo
// Package source reads audio files and yields interleaved signed 16-bit
// little-endian stereo PCM at the file's native sample rate, which is the
// input format of both the player and the encoder.
//
// Mono input is duplicated to both channels, extra channels are dropped and
// deeper samples are narrowed to 16 bits. Resampling is out of scope.
//
// Example:
//
//	src, err := source.Open("track.flac", log)
//	defer src.Close()
//	n, err := src.Read(pcm)
package source
