// Package container stores encoded packet streams in files.
//
// Opus packets go into an Ogg stream with one packet per page. FLAC
// frames follow the stream header taken from the encoder extradata.
// pcm_s16le becomes a WAV file and pcm_f32p is written raw.
package container
