// ABOUTME: Growable playback byte queue
// ABOUTME: Linear store with read cursor, bounded growth and compaction
package player

import (
	"fmt"
	"strings"
)

// OverflowPolicy decides what QueueData does with a chunk that does not fit
type OverflowPolicy int

const (
	// OverflowReject accepts nothing from a chunk that does not fit whole
	OverflowReject OverflowPolicy = iota

	// OverflowPartial accepts the prefix of the chunk that fits
	OverflowPartial

	// OverflowDropOldest discards the oldest unread audio to make room
	OverflowDropOldest
)

var overflowNames = []string{"reject", "partial", "drop-oldest"}

func (p OverflowPolicy) String() string {
	if p >= 0 && int(p) < len(overflowNames) {
		return overflowNames[p]
	}
	return fmt.Sprintf("OverflowPolicy(%d)", int(p))
}

// ParseOverflowPolicy parses the names printed by OverflowPolicy.String
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	for i, name := range overflowNames {
		if strings.EqualFold(s, name) {
			return OverflowPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown overflow policy %q (valid: %s)", s, strings.Join(overflowNames, ", "))
}

// queue holds unread bytes in buf[pos:end]. The store starts at min bytes,
// grows on demand up to max, and unread data never exceeds max.
type queue struct {
	buf []byte
	pos int
	end int
	min int
	max int
}

func newQueue(min, max int) *queue {
	return &queue{buf: make([]byte, min), min: min, max: max}
}

// len returns the number of unread bytes
func (q *queue) len() int {
	return q.end - q.pos
}

// free returns how many more bytes may be written
func (q *queue) free() int {
	return q.max - q.len()
}

// write appends from p following policy. It returns the bytes accepted and
// the unread bytes discarded to make room.
func (q *queue) write(p []byte, policy OverflowPolicy) (accepted, dropped int) {
	if len(p) > q.free() {
		switch policy {
		case OverflowReject:
			return 0, 0
		case OverflowPartial:
			p = p[:q.free()]
		case OverflowDropOldest:
			if len(p) > q.max {
				p = p[len(p)-q.max:]
			}
			dropped = len(p) - q.free()
			q.pos += dropped
		}
	}
	if len(p) == 0 {
		return 0, dropped
	}

	q.reserve(len(p))
	copy(q.buf[q.end:], p)
	q.end += len(p)
	return len(p), dropped
}

// reserve makes room for n bytes after end, first by moving unread data to
// the front and then by growing the store. Callers guarantee len()+n <= max.
func (q *queue) reserve(n int) {
	if q.end+n <= len(q.buf) {
		return
	}

	unread := q.len()
	if unread+n <= len(q.buf) {
		copy(q.buf, q.buf[q.pos:q.end])
		q.pos, q.end = 0, unread
		return
	}

	size := max(len(q.buf)*2, unread+n)
	size = min(size, q.max)
	grown := make([]byte, size)
	copy(grown, q.buf[q.pos:q.end])
	q.buf = grown
	q.pos, q.end = 0, unread
}

// read fills out from the unread data, zero-filling any shortfall, and
// returns the number of queued bytes copied. It never allocates.
func (q *queue) read(out []byte) int {
	n := copy(out, q.buf[q.pos:q.end])
	q.pos += n
	clear(out[n:])

	switch {
	case q.pos == q.end:
		q.pos, q.end = 0, 0
	case q.pos >= len(q.buf)/2:
		unread := q.len()
		copy(q.buf, q.buf[q.pos:q.end])
		q.pos, q.end = 0, unread
	}
	return n
}

// reset discards unread data and shrinks the store back to min
func (q *queue) reset() {
	q.pos, q.end = 0, 0
	if len(q.buf) > q.min {
		q.buf = make([]byte, q.min)
	}
}
