// ABOUTME: Entry point for the pcmpipe player
// ABOUTME: Parses flags, sets up logging and runs the playback pipeline
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/pcmpipe/internal/app"
	"github.com/Resonate-Protocol/pcmpipe/internal/config"
	"github.com/Resonate-Protocol/pcmpipe/internal/logging"
	"github.com/Resonate-Protocol/pcmpipe/internal/version"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/output"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/source"
)

var (
	file        = flag.String("file", "", "Audio file to play (mp3, flac, wav); empty plays a test tone")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	showVersion = flag.Bool("version", false, "Show version")
)

func main() {
	flags := config.NewFlags(flag.CommandLine, config.PlayerFlags)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "pcmpipe: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *config.Flags) error {
	cfg, err := flags.Config()
	if err != nil {
		return err
	}
	useTUI := !*noTUI

	// TUI mode: log only to the file
	var stdout io.Writer = os.Stdout
	if useTUI {
		stdout = nil
		if cfg.LogFile == "" {
			cfg.LogFile = "pcmpipe.log"
		}
	}
	logs, err := logging.New(cfg.LogFile, cfg.DebugLevel, stdout)
	if err != nil {
		return err
	}
	defer logs.Close()
	log := logs.Logger(logging.SubsysMain)

	src, err := source.Open(*file, logs.Logger(logging.SubsysMain))
	if err != nil {
		return err
	}
	defer src.Close()

	backend, err := output.New(cfg.Output, logs.Logger(logging.SubsysOutput))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("Starting %s", version.String())
	if err := app.NewPlayer(cfg, src, backend, logs).Run(ctx, useTUI); err != nil {
		log.Errorf("Playback failed: %v", err)
		return err
	}
	log.Infof("Player stopped")
	return nil
}
