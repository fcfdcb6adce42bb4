// ABOUTME: Tests for the playback queue
// ABOUTME: Covers ordering, growth, compaction and overflow policies
package player

import (
	"bytes"
	"testing"
)

func seq(start, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(start + i)
	}
	return b
}

func TestQueueFIFO(t *testing.T) {
	q := newQueue(8, 1024)
	var want []byte
	for i, size := range []int{3, 17, 1, 64, 200} {
		chunk := seq(i*31, size)
		want = append(want, chunk...)
		if n, _ := q.write(chunk, OverflowReject); n != size {
			t.Fatalf("chunk %d: expected %d accepted, got %d", i, size, n)
		}
	}

	var got []byte
	for _, size := range []int{5, 100, 1, 179} {
		out := make([]byte, size)
		n := q.read(out)
		got = append(got, out[:n]...)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("queue reordered or lost data")
	}
	if q.len() != 0 {
		t.Errorf("expected empty queue, %d left", q.len())
	}
}

func TestQueueReadZeroFillsShortfall(t *testing.T) {
	q := newQueue(16, 64)
	q.write([]byte{1, 2, 3}, OverflowReject)

	out := []byte{9, 9, 9, 9, 9, 9}
	if n := q.read(out); n != 3 {
		t.Fatalf("expected 3 bytes, got %d", n)
	}
	if !bytes.Equal(out, []byte{1, 2, 3, 0, 0, 0}) {
		t.Errorf("unexpected output %v", out)
	}
	if q.pos != 0 || q.end != 0 {
		t.Errorf("drained queue should reset cursors, got pos=%d end=%d", q.pos, q.end)
	}
}

func TestQueueGrowsUpToMax(t *testing.T) {
	q := newQueue(4, 100)
	q.write(seq(0, 10), OverflowReject)
	if len(q.buf) < 10 || len(q.buf) > 100 {
		t.Fatalf("unexpected store size %d", len(q.buf))
	}
	q.write(seq(10, 90), OverflowReject)
	if len(q.buf) != 100 {
		t.Errorf("expected store clamped to 100, got %d", len(q.buf))
	}
	if n, _ := q.write([]byte{1}, OverflowReject); n != 0 {
		t.Errorf("full queue accepted %d bytes", n)
	}
}

func TestQueueRebasesBeforeGrowing(t *testing.T) {
	q := newQueue(16, 16)
	q.write(seq(0, 12), OverflowReject)
	q.read(make([]byte, 4))
	if q.pos != 4 {
		t.Fatalf("expected pos 4, got %d", q.pos)
	}

	if n, _ := q.write(seq(12, 8), OverflowReject); n != 8 {
		t.Fatalf("expected 8 accepted, got %d", n)
	}
	if len(q.buf) != 16 {
		t.Errorf("store should not grow past max, got %d", len(q.buf))
	}

	out := make([]byte, 16)
	q.read(out)
	if !bytes.Equal(out, seq(4, 16)) {
		t.Errorf("unexpected data after rebase: %v", out)
	}
}

func TestQueueCompactsPastHalf(t *testing.T) {
	q := newQueue(100, 100)
	q.write(seq(0, 80), OverflowReject)
	q.read(make([]byte, 60))

	if q.pos != 0 || q.end != 20 {
		t.Errorf("expected compaction to pos=0 end=20, got pos=%d end=%d", q.pos, q.end)
	}
	out := make([]byte, 20)
	q.read(out)
	if !bytes.Equal(out, seq(60, 20)) {
		t.Errorf("compaction corrupted data")
	}
}

func TestQueueOverflowPolicies(t *testing.T) {
	tests := []struct {
		name        string
		policy      OverflowPolicy
		chunk       int
		accepted    int
		dropped     int
		wantUnread  int
		firstUnread byte
	}{
		{"reject", OverflowReject, 30, 0, 0, 40, 0},
		{"partial", OverflowPartial, 30, 24, 0, 64, 0},
		{"drop oldest", OverflowDropOldest, 30, 30, 6, 64, 6},
		{"drop oldest huge chunk", OverflowDropOldest, 100, 64, 40, 64, 236},
		{"fits", OverflowReject, 24, 24, 0, 64, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newQueue(16, 64)
			q.write(seq(0, 40), OverflowReject)

			accepted, dropped := q.write(seq(200, tt.chunk), tt.policy)
			if accepted != tt.accepted {
				t.Errorf("expected %d accepted, got %d", tt.accepted, accepted)
			}
			if dropped != tt.dropped {
				t.Errorf("expected %d dropped, got %d", tt.dropped, dropped)
			}
			if q.len() != tt.wantUnread {
				t.Errorf("expected %d unread, got %d", tt.wantUnread, q.len())
			}
			if q.buf[q.pos] != tt.firstUnread {
				t.Errorf("expected first unread byte %d, got %d", tt.firstUnread, q.buf[q.pos])
			}
		})
	}
}

func TestQueueResetShrinks(t *testing.T) {
	q := newQueue(8, 1024)
	q.write(seq(0, 500), OverflowReject)
	q.reset()
	if q.len() != 0 || len(q.buf) != 8 {
		t.Errorf("expected empty store of 8 bytes, got len=%d size=%d", q.len(), len(q.buf))
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	for _, p := range []OverflowPolicy{OverflowReject, OverflowPartial, OverflowDropOldest} {
		got, err := ParseOverflowPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseOverflowPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseOverflowPolicy("block"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
