// ABOUTME: Ogg page writer
// ABOUTME: Lacing, page flags and the Ogg CRC for single-stream files
package container

import (
	"encoding/binary"
	"io"
	"math/rand/v2"
)

const (
	oggCapture = "OggS"

	oggFlagContinued = 0x1
	oggFlagBOS       = 0x2
	oggFlagEOS       = 0x4

	oggHeaderSize = 27
	oggMaxSegment = 255
)

// oggCRCTable is the table for the Ogg CRC-32 (polynomial 0x04c11db7, no
// reflection, zero init), which hash/crc32 cannot express.
var oggCRCTable = func() [256]uint32 {
	var table [256]uint32
	const poly = 0x04c11db7
	for i := range table {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = r<<1 ^ poly
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}()

func oggCRC(b []byte) uint32 {
	var crc uint32
	for _, v := range b {
		crc = crc<<8 ^ oggCRCTable[byte(crc>>24)^v]
	}
	return crc
}

// oggStream writes one logical bitstream, one packet per page
type oggStream struct {
	w      io.Writer
	serial uint32
	seq    uint32
}

func newOggStream(w io.Writer) *oggStream {
	return &oggStream{w: w, serial: rand.Uint32()}
}

// lacing returns the segment table for a packet. A packet whose length is a
// multiple of 255 ends with a zero-length segment.
func lacing(n int) []byte {
	table := make([]byte, 0, n/oggMaxSegment+1)
	for n >= oggMaxSegment {
		table = append(table, oggMaxSegment)
		n -= oggMaxSegment
	}
	return append(table, byte(n))
}

// writePage emits packet as a single page
func (o *oggStream) writePage(packet []byte, granule uint64, flags byte) error {
	segments := lacing(len(packet))
	if len(segments) > 255 {
		return errPacketTooLarge
	}

	page := make([]byte, oggHeaderSize+len(segments)+len(packet))
	copy(page, oggCapture)
	page[4] = 0 // version
	page[5] = flags
	binary.LittleEndian.PutUint64(page[6:], granule)
	binary.LittleEndian.PutUint32(page[14:], o.serial)
	binary.LittleEndian.PutUint32(page[18:], o.seq)
	page[26] = byte(len(segments))
	copy(page[oggHeaderSize:], segments)
	copy(page[oggHeaderSize+len(segments):], packet)
	binary.LittleEndian.PutUint32(page[22:], oggCRC(page))

	o.seq++
	_, err := o.w.Write(page)
	return err
}
