// ABOUTME: Ogg Opus file writer
// ABOUTME: OpusHead from encoder extradata, OpusTags, one packet per page
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/Resonate-Protocol/pcmpipe/internal/version"
)

// oggOpus holds back one packet so the final page can carry the EOS flag
type oggOpus struct {
	ogg      *oggStream
	granule  uint64
	step     uint64
	pending  []byte
	hasPage  bool
	finished bool
}

func newOggOpus(w io.Writer, s Stream) (*oggOpus, error) {
	head := s.Extradata
	if len(head) < 19 || !bytes.HasPrefix(head, []byte("OpusHead")) {
		return nil, errors.New("opus stream needs OpusHead extradata")
	}
	if s.SampleRate <= 0 || s.SamplesPerPacket <= 0 {
		return nil, errors.New("opus stream needs sample rate and packet duration")
	}

	o := &oggOpus{
		ogg: newOggStream(w),
		// Granule positions count 48kHz samples including the pre-skip
		granule: uint64(binary.LittleEndian.Uint16(head[10:])),
		step:    uint64(s.SamplesPerPacket) * 48000 / uint64(s.SampleRate),
	}

	if err := o.ogg.writePage(head, 0, oggFlagBOS); err != nil {
		return nil, err
	}
	if err := o.ogg.writePage(opusTags(version.String()), 0, 0); err != nil {
		return nil, err
	}
	return o, nil
}

// opusTags builds a comment header with a vendor string and no comments
func opusTags(vendor string) []byte {
	tags := make([]byte, 0, 16+len(vendor))
	tags = append(tags, "OpusTags"...)
	tags = binary.LittleEndian.AppendUint32(tags, uint32(len(vendor)))
	tags = append(tags, vendor...)
	return binary.LittleEndian.AppendUint32(tags, 0)
}

func (o *oggOpus) WritePacket(pkt []byte) error {
	if o.hasPage {
		if err := o.ogg.writePage(o.pending, o.granule, 0); err != nil {
			return err
		}
	}
	o.granule += o.step
	o.pending = append(o.pending[:0], pkt...)
	o.hasPage = true
	return nil
}

func (o *oggOpus) Close() error {
	if o.finished {
		return nil
	}
	o.finished = true
	if !o.hasPage {
		return o.ogg.writePage(nil, o.granule, oggFlagEOS)
	}
	return o.ogg.writePage(o.pending, o.granule, oggFlagEOS)
}
