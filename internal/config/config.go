// ABOUTME: Configuration for the pcmpipe binaries
// ABOUTME: Defaults, optional TOML file and command line overrides
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/codec"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/output"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/player"
)

// Config holds every setting either binary understands
type Config struct {
	Output      string `toml:"output"`
	MinBufferMs int    `toml:"min_buffer_ms"`
	MaxBufferMs int    `toml:"max_buffer_ms"`
	Overflow    string `toml:"overflow"`
	Volume      int    `toml:"volume"`

	LogFile     string `toml:"log_file"`
	DebugLevel  string `toml:"debuglevel"`
	MetricsAddr string `toml:"metrics_addr"`

	Codec   string `toml:"codec"`
	BitRate int    `toml:"bitrate"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Output:      "malgo",
		MinBufferMs: 100,
		MaxBufferMs: 2000,
		Overflow:    player.OverflowReject.String(),
		Volume:      100,
		DebugLevel:  "info",
		Codec:       codec.Opus.String(),
		BitRate:     128000,
	}
}

// LoadFile overlays the TOML file at path onto c. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks ranges and names
func (c Config) Validate() error {
	if c.MinBufferMs <= 0 {
		return errors.New("min buffer must be positive")
	}
	if c.MaxBufferMs < c.MinBufferMs {
		return fmt.Errorf("max buffer %dms is below min buffer %dms", c.MaxBufferMs, c.MinBufferMs)
	}
	if _, err := player.ParseOverflowPolicy(c.Overflow); err != nil {
		return err
	}
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume %d out of range 0-100", c.Volume)
	}
	if !validOutput(c.Output) {
		return fmt.Errorf("%w: %s", output.ErrUnknownBackend, c.Output)
	}
	if _, err := codec.ParseID(c.Codec); err != nil {
		return err
	}
	if c.BitRate < 0 {
		return fmt.Errorf("bitrate %d is negative", c.BitRate)
	}
	return nil
}

func validOutput(name string) bool {
	for _, n := range output.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// OverflowPolicy returns the parsed overflow setting
func (c Config) OverflowPolicy() player.OverflowPolicy {
	p, _ := player.ParseOverflowPolicy(c.Overflow)
	return p
}

// CodecID returns the parsed codec setting
func (c Config) CodecID() codec.ID {
	id, _ := codec.ParseID(c.Codec)
	return id
}

// BufferBytes converts the buffer durations to byte sizes at sampleRate
func (c Config) BufferBytes(sampleRate int) (minBytes, maxBytes int) {
	minBytes = audio.BytesForDuration(sampleRate, time.Duration(c.MinBufferMs)*time.Millisecond)
	maxBytes = audio.BytesForDuration(sampleRate, time.Duration(c.MaxBufferMs)*time.Millisecond)
	return minBytes, maxBytes
}
