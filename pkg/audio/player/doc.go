// ABOUTME: Real-time PCM player package
// ABOUTME: Queues producer chunks and feeds them to an output device callback
// Package player streams raw PCM to an audio output device.
//
// Producers hand the Player arbitrary-sized chunks of interleaved signed
// 16-bit stereo PCM with QueueData. The output device pulls fixed-size
// blocks through a callback; when the queue runs short the remainder of the
// block is silence. Capacity is bounded: a chunk that does not fit is
// handled according to the configured OverflowPolicy.
//
// Example:
//
//	backend, _ := output.New("malgo", log)
//	p := player.New(backend, player.Config{Logger: log})
//	err := p.Initialize(48000, 4096, 65536)
//	err = p.Play()
//	n, err := p.QueueData(buf)
//	if errors.Is(err, player.ErrQueueFull) {
//	    // retry buf.Bytes()[n:] later
//	}
package player
