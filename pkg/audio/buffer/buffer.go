// ABOUTME: Owned byte buffer with a used-size marker
// ABOUTME: Capacity is fixed at construction
package buffer

import (
	"errors"
	"fmt"
)

// ErrExceedsCapacity is returned when a used size larger than the buffer is set
var ErrExceedsCapacity = errors.New("used size exceeds buffer capacity")

// Buffer is a fixed-capacity byte region plus the count of valid bytes
type Buffer struct {
	data []byte
	used int
}

// New allocates a buffer of the given capacity with a used size of zero
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Wrap adopts p as the buffer storage with every byte marked used
func Wrap(p []byte) *Buffer {
	return &Buffer{data: p, used: len(p)}
}

// Bytes returns the valid prefix
func (b *Buffer) Bytes() []byte {
	return b.data[:b.used]
}

// Data returns the full storage regardless of used size
func (b *Buffer) Data() []byte {
	return b.data
}

// Cap returns the capacity
func (b *Buffer) Cap() int {
	return len(b.data)
}

// UsedSize returns the number of valid bytes
func (b *Buffer) UsedSize() int {
	return b.used
}

// SetUsedSize marks the first n bytes valid
func (b *Buffer) SetUsedSize(n int) error {
	if n < 0 || n > len(b.data) {
		return fmt.Errorf("%w: %d > %d", ErrExceedsCapacity, n, len(b.data))
	}
	b.used = n
	return nil
}

// Reset marks the buffer empty
func (b *Buffer) Reset() {
	b.used = 0
}
