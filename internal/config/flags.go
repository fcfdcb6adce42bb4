// ABOUTME: Command line binding for Config
// ABOUTME: Flags given explicitly override the TOML file and defaults
package config

import "flag"

// Flags binds Config fields to a flag set
type Flags struct {
	fs         *flag.FlagSet
	values     Config
	configPath string
	apply      map[string]func(dst *Config)
}

// Flag groups
const (
	PlayerFlags = 1 << iota
	EncoderFlags
)

// NewFlags registers the flags in groups on fs. Every group gets -config,
// -log-file and -debuglevel.
func NewFlags(fs *flag.FlagSet, groups int) *Flags {
	d := Default()
	f := &Flags{fs: fs, values: d, apply: make(map[string]func(*Config))}

	fs.StringVar(&f.configPath, "config", "", "TOML config file")
	f.str("log-file", &f.values.LogFile, "Log file path (rotated)", func(c *Config, v string) { c.LogFile = v })
	f.str("debuglevel", &f.values.DebugLevel,
		"Log level: trace, debug, info, warn, error, critical, off; or SUBSYS=level,...",
		func(c *Config, v string) { c.DebugLevel = v })

	if groups&PlayerFlags != 0 {
		f.str("output", &f.values.Output, "Audio output backend: malgo, oto, portaudio, null",
			func(c *Config, v string) { c.Output = v })
		f.num("min-buffer-ms", &f.values.MinBufferMs, "Initial playback queue size in milliseconds",
			func(c *Config, v int) { c.MinBufferMs = v })
		f.num("max-buffer-ms", &f.values.MaxBufferMs, "Playback queue limit in milliseconds",
			func(c *Config, v int) { c.MaxBufferMs = v })
		f.str("overflow", &f.values.Overflow, "Queue overflow policy: reject, partial, drop-oldest",
			func(c *Config, v string) { c.Overflow = v })
		f.num("volume", &f.values.Volume, "Initial volume 0-100",
			func(c *Config, v int) { c.Volume = v })
		f.str("metrics-addr", &f.values.MetricsAddr, "Serve prometheus metrics on this address",
			func(c *Config, v string) { c.MetricsAddr = v })
	}
	if groups&EncoderFlags != 0 {
		f.str("codec", &f.values.Codec, "Codec: opus, flac, pcm_s16le, pcm_f32p",
			func(c *Config, v string) { c.Codec = v })
		f.num("bitrate", &f.values.BitRate, "Target bit rate in bits per second (opus)",
			func(c *Config, v int) { c.BitRate = v })
	}
	return f
}

func (f *Flags) str(name string, p *string, usage string, set func(*Config, string)) {
	f.fs.StringVar(p, name, *p, usage)
	f.apply[name] = func(dst *Config) { set(dst, *p) }
}

func (f *Flags) num(name string, p *int, usage string, set func(*Config, int)) {
	f.fs.IntVar(p, name, *p, usage)
	f.apply[name] = func(dst *Config) { set(dst, *p) }
}

// Config resolves the final settings after the flag set has been parsed:
// defaults, then the -config file, then flags given on the command line.
func (f *Flags) Config() (Config, error) {
	cfg := Default()
	if f.configPath != "" {
		if err := cfg.LoadFile(f.configPath); err != nil {
			return Config{}, err
		}
	}
	f.fs.Visit(func(fl *flag.Flag) {
		if apply, ok := f.apply[fl.Name]; ok {
			apply(&cfg)
		}
	})
	return cfg, cfg.Validate()
}
