// ABOUTME: Audio output package for callback-driven playback
// ABOUTME: Provides Backend/Stream interfaces and malgo, oto, PortAudio, null backends
// Package output provides pull-model audio output.
//
// A Backend opens a Stream on the default playback device. The device asks
// for audio by invoking a FillFunc on its own real-time goroutine with a
// byte slice of exactly the length it needs; the function must fill all of
// it (silence included) and must not block.
//
// Available backends: malgo (default), oto, portaudio (requires the
// portaudio build tag) and null (no device, paced by a ticker).
//
// Example:
//
//	backend, err := output.New("malgo", log)
//	stream, err := backend.Open(output.Config{SampleRate: 48000, Channels: 2}, fill)
//	err = stream.Start()
package output
