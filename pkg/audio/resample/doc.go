// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates and
// handles both upsampling and downsampling. The resampler is streaming:
// feeding a signal in chunks gives the same output as feeding it at once.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	out = r.Process(out[:0], samples)
package resample
