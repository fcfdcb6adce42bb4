// ABOUTME: Tests for container writers
// ABOUTME: Parses Ogg pages back and round trips FLAC and WAV files
package container

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/codec"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

type oggPage struct {
	flags   byte
	granule uint64
	serial  uint32
	seq     uint32
	packet  []byte
}

// parsePages splits b into pages, checking capture pattern and CRC
func parsePages(t *testing.T, b []byte) []oggPage {
	t.Helper()
	var pages []oggPage
	for len(b) > 0 {
		if len(b) < oggHeaderSize || string(b[:4]) != oggCapture {
			t.Fatalf("bad page header at offset %d", len(pages))
		}
		nseg := int(b[26])
		size := 0
		for _, l := range b[oggHeaderSize : oggHeaderSize+nseg] {
			size += int(l)
		}
		total := oggHeaderSize + nseg + size
		page := bytes.Clone(b[:total])
		want := binary.LittleEndian.Uint32(page[22:])
		binary.LittleEndian.PutUint32(page[22:], 0)
		if got := oggCRC(page); got != want {
			t.Fatalf("page %d: crc %08x, want %08x", len(pages), got, want)
		}
		pages = append(pages, oggPage{
			flags:   b[5],
			granule: binary.LittleEndian.Uint64(b[6:]),
			serial:  binary.LittleEndian.Uint32(b[14:]),
			seq:     binary.LittleEndian.Uint32(b[18:]),
			packet:  b[oggHeaderSize+nseg : total],
		})
		b = b[total:]
	}
	return pages
}

func TestOggCRC(t *testing.T) {
	// CRC-32/CKSUM without the final inversion
	if got := oggCRC([]byte("123456789")); got != 0x89a1897f {
		t.Errorf("oggCRC = %08x, want 89a1897f", got)
	}
}

func TestLacing(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0}},
		{100, []byte{100}},
		{255, []byte{255, 0}},
		{256, []byte{255, 1}},
		{600, []byte{255, 255, 90}},
	}
	for _, tt := range tests {
		if got := lacing(tt.n); !bytes.Equal(got, tt.want) {
			t.Errorf("lacing(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func tempFile(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func opusStream(t *testing.T, rate int) Stream {
	t.Helper()
	backend := codec.NewOpus()
	frameSize := backend.Capabilities().FrameSize(rate)
	session, err := backend.Open(codec.Params{
		SampleRate:   rate,
		Channels:     2,
		BitRate:      64000,
		SampleFormat: backend.Capabilities().PreferredFormat(),
		FrameSize:    frameSize,
	})
	if err != nil {
		t.Fatalf("open opus: %v", err)
	}
	defer session.Close()
	return Stream{
		Codec:            codec.Opus,
		Extradata:        bytes.Clone(session.Extradata()),
		SampleRate:       rate,
		Channels:         2,
		SamplesPerPacket: frameSize,
	}
}

func TestOggOpusPages(t *testing.T) {
	var out bytes.Buffer
	s := opusStream(t, 24000)
	w, err := newOggOpus(&out, s)
	if err != nil {
		t.Fatalf("newOggOpus: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := w.WritePacket([]byte{0xfc, byte(i)}); err != nil {
			t.Fatalf("WritePacket: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pages := parsePages(t, out.Bytes())
	if len(pages) != 5 {
		t.Fatalf("expected 5 pages, got %d", len(pages))
	}
	if pages[0].flags != oggFlagBOS || !bytes.Equal(pages[0].packet, s.Extradata) {
		t.Error("first page should be BOS carrying OpusHead")
	}
	if !bytes.HasPrefix(pages[1].packet, []byte("OpusTags")) {
		t.Error("second page should carry OpusTags")
	}

	preSkip := uint64(binary.LittleEndian.Uint16(s.Extradata[10:]))
	for i, p := range pages {
		if p.seq != uint32(i) {
			t.Errorf("page %d: sequence %d", i, p.seq)
		}
		if p.serial != pages[0].serial {
			t.Errorf("page %d: serial changed", i)
		}
	}
	// 20ms at 24kHz is 480 samples, 960 at 48kHz
	for i, p := range pages[2:] {
		want := preSkip + uint64(i+1)*960
		if p.granule != want {
			t.Errorf("audio page %d: granule %d, want %d", i, p.granule, want)
		}
		if p.packet[1] != byte(i) {
			t.Errorf("audio page %d: packets out of order", i)
		}
	}
	if pages[4].flags != oggFlagEOS {
		t.Errorf("last page flags %#x, want EOS", pages[4].flags)
	}
	if pages[3].flags != 0 {
		t.Errorf("middle page flags %#x, want 0", pages[3].flags)
	}
}

func TestOggOpusEmpty(t *testing.T) {
	var out bytes.Buffer
	w, err := newOggOpus(&out, opusStream(t, 48000))
	if err != nil {
		t.Fatalf("newOggOpus: %v", err)
	}
	w.Close()
	w.Close()
	pages := parsePages(t, out.Bytes())
	if len(pages) != 3 || pages[2].flags != oggFlagEOS || len(pages[2].packet) != 0 {
		t.Fatalf("expected header pages plus an empty EOS page, got %d pages", len(pages))
	}
}

func TestOggOpusRequiresHead(t *testing.T) {
	var out bytes.Buffer
	_, err := newOggOpus(&out, Stream{Codec: codec.Opus, SampleRate: 48000, SamplesPerPacket: 960})
	if err == nil {
		t.Error("expected error without OpusHead")
	}
}

func TestFLACRoundTrip(t *testing.T) {
	const frameSize = 256
	backend := codec.NewFLAC()
	session, err := backend.Open(codec.Params{
		SampleRate:   44100,
		Channels:     2,
		SampleFormat: backend.Capabilities().PreferredFormat(),
		FrameSize:    frameSize,
	})
	if err != nil {
		t.Fatalf("open flac: %v", err)
	}
	defer session.Close()

	f := tempFile(t, "out.flac")
	w, err := New(f, Stream{
		Codec:            codec.FLAC,
		Extradata:        session.Extradata(),
		SampleRate:       44100,
		Channels:         2,
		SamplesPerPacket: frameSize,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	frame := codec.NewFrame(backend.Capabilities().PreferredFormat(), 2, frameSize)
	for i := 0; i < frameSize; i++ {
		frame.Int16[0][i] = int16(i * 10)
		frame.Int16[1][i] = int16(-i * 10)
	}
	for n := 0; n < 2; n++ {
		if err := session.SendFrame(frame); err != nil {
			t.Fatalf("SendFrame: %v", err)
		}
		for {
			pkt, err := session.ReceivePacket()
			if err != nil {
				break
			}
			if err := w.WritePacket(pkt); err != nil {
				t.Fatalf("WritePacket: %v", err)
			}
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	stream, err := flac.ParseFile(f.Name())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	defer stream.Close()
	if stream.Info.SampleRate != 44100 || stream.Info.NChannels != 2 {
		t.Errorf("unexpected stream info %+v", stream.Info)
	}
	count := 0
	for {
		fr, err := stream.ParseNext()
		if err != nil {
			break
		}
		if fr.Subframes[1].Samples[10] != -100 {
			t.Errorf("frame %d: sample mismatch", count)
		}
		count++
	}
	if count != 2 {
		t.Errorf("decoded %d frames, want 2", count)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	f := tempFile(t, "out.wav")
	w, err := New(f, Stream{Codec: codec.PCM, SampleRate: 48000, Channels: 2, SamplesPerPacket: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pkt := []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80, 0xff, 0x7f}
	w.WritePacket(pkt)
	w.WritePacket(pkt)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := os.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	dec := wav.NewDecoder(r)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	want := []int{1, -1, -32768, 32767, 1, -1, -32768, 32767}
	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(want))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], want[i])
		}
	}
	if dec.SampleRate != 48000 || dec.NumChans != 2 {
		t.Errorf("unexpected header: rate=%d chans=%d", dec.SampleRate, dec.NumChans)
	}
}

func TestRawAndUnknown(t *testing.T) {
	f := tempFile(t, "out.raw")
	w, err := New(f, Stream{Codec: codec.PCMFloatPlanar})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.WritePacket([]byte{1, 2, 3, 4})
	w.Close()
	if info, _ := f.Stat(); info.Size() != 4 {
		t.Errorf("raw file size %d, want 4", info.Size())
	}

	if _, err := New(f, Stream{Codec: codec.None}); err == nil {
		t.Error("expected error for codec none")
	}
}

func TestExtension(t *testing.T) {
	cases := map[codec.ID]string{
		codec.Opus:           ".opus",
		codec.FLAC:           ".flac",
		codec.PCM:            ".wav",
		codec.PCMFloatPlanar: ".raw",
	}
	for id, want := range cases {
		if got := Extension(id); got != want {
			t.Errorf("Extension(%s) = %q, want %q", id, got, want)
		}
	}
}
