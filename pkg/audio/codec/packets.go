// ABOUTME: Pending packet queue shared by session implementations
// ABOUTME: Implements the again/EOF flow control of ReceivePacket
package codec

type packetQueue struct {
	pending [][]byte
	head    int
	eof     bool
	closed  bool
}

func (q *packetQueue) push(pkt []byte) {
	q.pending = append(q.pending, pkt)
}

func (q *packetQueue) receive() ([]byte, error) {
	if q.closed {
		return nil, ErrClosed
	}
	if q.head < len(q.pending) {
		pkt := q.pending[q.head]
		q.pending[q.head] = nil
		q.head++
		if q.head == len(q.pending) {
			q.pending = q.pending[:0]
			q.head = 0
		}
		return pkt, nil
	}
	if q.eof {
		return nil, ErrEOF
	}
	return nil, ErrAgain
}

// accepting reports whether SendFrame may be called
func (q *packetQueue) accepting() error {
	if q.closed {
		return ErrClosed
	}
	if q.eof {
		return ErrEOF
	}
	return nil
}
