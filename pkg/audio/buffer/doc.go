// ABOUTME: Byte buffer and buffer pool package
// ABOUTME: Owned byte buffers exchanged between producers, player and encoder
// Package buffer provides the byte buffer exchanged across the player and
// encoder boundaries, and a pool that recycles them.
//
// A Buffer owns a fixed-capacity byte slice plus a used size; only the
// first UsedSize bytes are meaningful. A Pool hands out buffers at least as
// large as requested and takes them back when the holder is done.
//
// Example:
//
//	pool := buffer.NewPool()
//	buf := pool.GetBuffer(3840)
//	copy(buf.Bytes(), pcm)
//	n, err := player.QueueData(buf)
//	pool.FreeBuffer(buf)
package buffer
