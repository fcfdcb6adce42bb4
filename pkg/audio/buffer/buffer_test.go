// ABOUTME: Tests for Buffer
// ABOUTME: Covers used size bookkeeping and capacity limits
package buffer

import (
	"errors"
	"testing"
)

func TestBufferUsedSize(t *testing.T) {
	b := New(16)
	if b.Cap() != 16 {
		t.Fatalf("expected capacity 16, got %d", b.Cap())
	}
	if b.UsedSize() != 0 || len(b.Bytes()) != 0 {
		t.Fatalf("new buffer should be empty")
	}

	if err := b.SetUsedSize(10); err != nil {
		t.Fatalf("SetUsedSize(10) failed: %v", err)
	}
	if len(b.Bytes()) != 10 {
		t.Errorf("expected 10 valid bytes, got %d", len(b.Bytes()))
	}
	if len(b.Data()) != 16 {
		t.Errorf("Data() should expose full capacity")
	}

	err := b.SetUsedSize(17)
	if !errors.Is(err, ErrExceedsCapacity) {
		t.Errorf("expected ErrExceedsCapacity, got %v", err)
	}
	if b.UsedSize() != 10 {
		t.Errorf("failed SetUsedSize must not change used size")
	}

	b.Reset()
	if b.UsedSize() != 0 {
		t.Errorf("Reset should clear used size")
	}
}

func TestWrap(t *testing.T) {
	b := Wrap([]byte{1, 2, 3})
	if b.UsedSize() != 3 || b.Cap() != 3 {
		t.Errorf("expected used=3 cap=3, got used=%d cap=%d", b.UsedSize(), b.Cap())
	}
}
