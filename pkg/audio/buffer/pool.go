// ABOUTME: Size-classed buffer pool
// ABOUTME: Power-of-two free lists backed by sync.Pool with usage counters
package buffer

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

const (
	minClassShift = 6  // 64 B
	maxClassShift = 24 // 16 MiB
	numClasses    = maxClassShift - minClassShift + 1
)

// Stats reports pool activity
type Stats struct {
	Allocated   uint64 // buffers created because no free one was available
	Reused      uint64 // requests served from a free list
	Returned    uint64 // buffers accepted back into a free list
	Outstanding int64  // buffers handed out and not yet freed
}

// Pool recycles Buffers by capacity class. It is safe for concurrent use and
// never blocks; requests above the largest class are allocated exactly and
// discarded when freed.
type Pool struct {
	classes [numClasses]sync.Pool

	allocated   atomic.Uint64
	reused      atomic.Uint64
	returned    atomic.Uint64
	outstanding atomic.Int64
}

// NewPool creates an empty pool
func NewPool() *Pool {
	return &Pool{}
}

// classFor returns the class index serving size, or -1 when size is too large
func classFor(size int) int {
	if size <= 1<<minClassShift {
		return 0
	}
	shift := bits.Len(uint(size - 1))
	if shift > maxClassShift {
		return -1
	}
	return shift - minClassShift
}

// GetBuffer returns a buffer with capacity >= size and used size == size.
// Contents are unspecified.
func (p *Pool) GetBuffer(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	p.outstanding.Add(1)

	class := classFor(size)
	if class < 0 {
		p.allocated.Add(1)
		return &Buffer{data: make([]byte, size), used: size}
	}

	if v := p.classes[class].Get(); v != nil {
		b := v.(*Buffer)
		b.used = size
		p.reused.Add(1)
		return b
	}

	p.allocated.Add(1)
	return &Buffer{data: make([]byte, 1<<(class+minClassShift)), used: size}
}

// FreeBuffer returns b to the pool. Buffers that were not sized by the pool
// are left to the garbage collector. b must not be used afterwards.
func (p *Pool) FreeBuffer(b *Buffer) {
	if b == nil {
		return
	}
	p.outstanding.Add(-1)

	c := len(b.data)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	class := classFor(c)
	if class < 0 || 1<<(class+minClassShift) != c {
		return
	}
	b.used = 0
	p.returned.Add(1)
	p.classes[class].Put(b)
}

// Stats returns a snapshot of the pool counters
func (p *Pool) Stats() Stats {
	return Stats{
		Allocated:   p.allocated.Load(),
		Reused:      p.reused.Load(),
		Returned:    p.returned.Load(),
		Outstanding: p.outstanding.Load(),
	}
}
