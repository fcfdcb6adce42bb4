// ABOUTME: Entry point for the pcmpipe encoder
// ABOUTME: Encodes an audio file or test tone into opus, flac, wav or raw
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/pcmpipe/internal/app"
	"github.com/Resonate-Protocol/pcmpipe/internal/config"
	"github.com/Resonate-Protocol/pcmpipe/internal/container"
	"github.com/Resonate-Protocol/pcmpipe/internal/logging"
	"github.com/Resonate-Protocol/pcmpipe/internal/version"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/source"
)

var (
	in       = flag.String("in", "", "Input file (mp3, flac, wav); empty or \"tone\" encodes a test tone")
	out      = flag.String("out", "", "Output file (default: input name with the codec's extension)")
	duration = flag.Duration("duration", 5*time.Second, "Test tone length")
)

func main() {
	flags := config.NewFlags(flag.CommandLine, config.EncoderFlags)
	flag.Parse()

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "pcmpipe-encode: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *config.Flags) error {
	cfg, err := flags.Config()
	if err != nil {
		return err
	}
	logs, err := logging.New(cfg.LogFile, cfg.DebugLevel, os.Stdout)
	if err != nil {
		return err
	}
	defer logs.Close()
	log := logs.Logger(logging.SubsysMain)

	var src source.Source
	if *in == "" || *in == "tone" {
		src = source.NewTone(source.DefaultToneRate, source.DefaultToneFrequency, *duration)
	} else {
		src, err = source.Open(*in, log)
		if err != nil {
			return err
		}
	}
	defer src.Close()

	id := cfg.CodecID()
	outPath := *out
	if outPath == "" {
		base := "tone"
		if *in != "" && *in != "tone" {
			base = strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
		}
		outPath = base + container.Extension(id)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("%s: %s -> %s (%s)", version.String(), src.Title(), outPath, id)
	start := time.Now()
	res, err := app.Encode(ctx, app.EncodeJob{
		Codec:   id,
		BitRate: cfg.BitRate,
		Source:  src,
		Out:     f,
	}, logs)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Infof("Wrote %s: %d packets, %d bytes at %dHz in %v",
		outPath, res.Stats.Packets, res.Stats.BytesOut, res.SampleRate, time.Since(start).Round(time.Millisecond))
	return nil
}
