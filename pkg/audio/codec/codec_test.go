// ABOUTME: Tests for codec IDs, status codes, capabilities and the registry
// ABOUTME: Table tests over the descriptor helpers
package codec

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		input   string
		want    ID
		wantErr bool
	}{
		{"opus", Opus, false},
		{"FLAC", FLAC, false},
		{"pcm", PCM, false},
		{"pcm_s16le", PCM, false},
		{" pcm_f32p ", PCMFloatPlanar, false},
		{"none", None, true},
		{"mp3", None, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCodec) {
					t.Errorf("expected ErrUnknownCodec, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseID(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
			}
			if back, _ := ParseID(got.String()); back != got {
				t.Errorf("String/ParseID mismatch for %v", got)
			}
		})
	}
}

func TestStatusErrors(t *testing.T) {
	wrapped := fmt.Errorf("encode: %w", ErrAgain)
	if !errors.Is(wrapped, ErrAgain) {
		t.Error("wrapped ErrAgain should match")
	}
	if errors.Is(wrapped, ErrEOF) {
		t.Error("ErrAgain should not match ErrEOF")
	}
	if StatusOf(wrapped) != StatusAgain {
		t.Errorf("expected StatusAgain, got %d", StatusOf(wrapped))
	}
	if StatusOf(errors.New("plain")) != 0 {
		t.Error("plain error should carry no status")
	}
	if ErrEOF.Error() != "end of stream" {
		t.Errorf("unexpected text %q", ErrEOF.Error())
	}
	if Status(-99).Error() != "codec status -99" {
		t.Errorf("unexpected text %q", Status(-99).Error())
	}
	for s := range statusText {
		if s >= 0 {
			t.Errorf("status %d must be negative", s)
		}
	}
}

func TestCapabilities(t *testing.T) {
	opusCaps := NewOpus().Capabilities()
	flacCaps := NewFLAC().Capabilities()

	tests := []struct {
		name string
		caps Capabilities
		rate int
		want bool
	}{
		{"opus 48k", opusCaps, 48000, true},
		{"opus 44.1k", opusCaps, 44100, false},
		{"flac 44.1k", flacCaps, 44100, true},
		{"flac 192k", flacCaps, 192000, true},
		{"flac too fast", flacCaps, 700000, false},
		{"flac zero", flacCaps, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.caps.SupportsRate(tt.rate); got != tt.want {
				t.Errorf("SupportsRate(%d) = %v, want %v", tt.rate, got, tt.want)
			}
		})
	}

	if opusCaps.FrameSize(48000) != 960 {
		t.Errorf("expected 960-sample opus frames at 48k, got %d", opusCaps.FrameSize(48000))
	}
	if flacCaps.FrameSize(48000) != 0 {
		t.Errorf("flac should not impose a frame size")
	}
	if opusCaps.PreferredFormat() != audio.SampleFormatFLT {
		t.Errorf("opus should take interleaved float")
	}
	if (Capabilities{}).PreferredFormat() != audio.SampleFormatNone {
		t.Errorf("empty capabilities should prefer none")
	}
}

func TestNearestRate(t *testing.T) {
	opus := NewOpus().Capabilities()
	flac := NewFLAC().Capabilities()
	tests := []struct {
		name string
		caps Capabilities
		rate int
		want int
	}{
		{"supported", opus, 24000, 24000},
		{"next above", opus, 44100, 48000},
		{"between", opus, 22050, 24000},
		{"above all", opus, 96000, 48000},
		{"flac any", flac, 44100, 44100},
		{"flac above max", flac, 700000, 655350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.caps.NearestRate(tt.rate); got != tt.want {
				t.Errorf("NearestRate(%d) = %d, want %d", tt.rate, got, tt.want)
			}
		})
	}
}

func TestNewFrameLayout(t *testing.T) {
	tests := []struct {
		format   audio.SampleFormat
		planes   int
		perPlane int
		float    bool
	}{
		{audio.SampleFormatS16, 1, 20, false},
		{audio.SampleFormatS16P, 2, 10, false},
		{audio.SampleFormatFLT, 1, 20, true},
		{audio.SampleFormatFLTP, 2, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			f := NewFrame(tt.format, 2, 10)
			if tt.float {
				if len(f.Float32) != tt.planes || len(f.Float32[0]) != tt.perPlane {
					t.Errorf("unexpected float layout %d x %d", len(f.Float32), len(f.Float32[0]))
				}
			} else {
				if len(f.Int16) != tt.planes || len(f.Int16[0]) != tt.perPlane {
					t.Errorf("unexpected int16 layout %d x %d", len(f.Int16), len(f.Int16[0]))
				}
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := Default()
	for _, id := range []ID{Opus, FLAC, PCM, PCMFloatPlanar} {
		if _, err := r.Lookup(id); err != nil {
			t.Errorf("default registry missing %s: %v", id, err)
		}
	}
	if len(r.IDs()) != 4 {
		t.Errorf("expected 4 codecs, got %v", r.IDs())
	}

	empty := NewRegistry()
	if _, err := empty.Lookup(Opus); !errors.Is(err, ErrUnknownCodec) {
		t.Errorf("expected ErrUnknownCodec, got %v", err)
	}
	empty.Register(PCM, NewPCM())
	if b, err := empty.Lookup(PCM); err != nil || b.Name() != "pcm_s16le" {
		t.Errorf("Lookup after Register = %v, %v", b, err)
	}
}

func TestParamsValidation(t *testing.T) {
	good := Params{SampleRate: 48000, Channels: 2, SampleFormat: audio.SampleFormatFLT, FrameSize: 960}

	tests := []struct {
		name   string
		modify func(*Params)
		want   error
	}{
		{"valid", func(*Params) {}, nil},
		{"bad rate", func(p *Params) { p.SampleRate = 44100 }, ErrUnsupported},
		{"bad format", func(p *Params) { p.SampleFormat = audio.SampleFormatS16P }, ErrUnsupported},
		{"no channels", func(p *Params) { p.Channels = 0 }, ErrInvalidArgument},
		{"no frame size", func(p *Params) { p.FrameSize = 0 }, ErrInvalidArgument},
	}

	caps := Capabilities{
		SampleFormats: []audio.SampleFormat{audio.SampleFormatFLT},
		SampleRates:   []int{48000},
		FrameDuration: 20 * time.Millisecond,
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := good
			tt.modify(&p)
			if err := p.validate(caps); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
