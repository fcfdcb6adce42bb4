// ABOUTME: Subsystem logging backend built on decred/slog
// ABOUTME: Writes to stdout and an optional rotated log file
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem tags
const (
	SubsysMain    = "MAIN"
	SubsysPlayer  = "PLYR"
	SubsysEncoder = "ENCD"
	SubsysOutput  = "OUTP"
	SubsysMetrics = "METR"
)

// Subsystems lists the known subsystem tags
var Subsystems = []string{SubsysMain, SubsysPlayer, SubsysEncoder, SubsysOutput, SubsysMetrics}

const (
	rotateThresholdKB = 1024
	rotateMaxRolls    = 10
)

// Backend hands out one logger per subsystem. All loggers share the same
// writers.
type Backend struct {
	mu           sync.Mutex
	stdout       io.Writer
	rotator      *rotator.Rotator
	backend      *slog.Backend
	defaultLevel slog.Level
	levels       map[string]slog.Level
	loggers      map[string]slog.Logger
}

// New creates a backend. logFile may be empty and stdout may be nil. The
// debugLevel string is either a single level applied to every subsystem or
// a comma separated list of level and subsys=level entries.
func New(logFile, debugLevel string, stdout io.Writer) (*Backend, error) {
	b := &Backend{
		stdout:       stdout,
		defaultLevel: slog.LevelInfo,
		levels:       make(map[string]slog.Level),
		loggers:      make(map[string]slog.Logger),
	}
	if err := b.parseLevels(debugLevel); err != nil {
		return nil, err
	}

	if logFile != "" {
		logDir, _ := filepath.Split(logFile)
		if logDir != "" {
			if err := os.MkdirAll(logDir, 0700); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		r, err := rotator.New(logFile, rotateThresholdKB, false, rotateMaxRolls)
		if err != nil {
			return nil, fmt.Errorf("failed to create file rotator: %w", err)
		}
		b.rotator = r
	}

	b.backend = slog.NewBackend(b)
	return b, nil
}

func (b *Backend) parseLevels(debugLevel string) error {
	if debugLevel == "" {
		return nil
	}
	for _, v := range strings.Split(debugLevel, ",") {
		fields := strings.Split(strings.TrimSpace(v), "=")
		switch len(fields) {
		case 1:
			level, ok := slog.LevelFromString(fields[0])
			if !ok {
				return fmt.Errorf("invalid log level %q", fields[0])
			}
			b.defaultLevel = level
		case 2:
			if !validSubsystem(fields[0]) {
				return fmt.Errorf("unknown subsystem %q (known: %s)",
					fields[0], strings.Join(sortedSubsystems(), ", "))
			}
			level, ok := slog.LevelFromString(fields[1])
			if !ok {
				return fmt.Errorf("invalid log level %q for %s", fields[1], fields[0])
			}
			b.levels[fields[0]] = level
		default:
			return fmt.Errorf("unable to parse %q as subsys=level debuglevel string", v)
		}
	}
	return nil
}

func validSubsystem(s string) bool {
	for _, known := range Subsystems {
		if s == known {
			return true
		}
	}
	return false
}

func sortedSubsystems() []string {
	s := append([]string(nil), Subsystems...)
	sort.Strings(s)
	return s
}

// Write fans a formatted log line out to stdout and the rotator
func (b *Backend) Write(p []byte) (int, error) {
	if b.stdout != nil {
		b.stdout.Write(p)
	}
	if b.rotator != nil {
		b.rotator.Write(p)
	}
	return len(p), nil
}

// Logger returns the logger for subsys, creating it on first use
func (b *Backend) Logger(subsys string) slog.Logger {
	b.mu.Lock()
	defer b.mu.Unlock()

	if l, ok := b.loggers[subsys]; ok {
		return l
	}
	l := b.backend.Logger(subsys)
	if level, ok := b.levels[subsys]; ok {
		l.SetLevel(level)
	} else {
		l.SetLevel(b.defaultLevel)
	}
	b.loggers[subsys] = l
	return l
}

// SetLevel changes the level of every logger handed out so far and of
// those created later.
func (b *Backend) SetLevel(level slog.Level) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.defaultLevel = level
	for k := range b.levels {
		delete(b.levels, k)
	}
	for _, l := range b.loggers {
		l.SetLevel(level)
	}
}

// Close flushes and closes the log file, if any
func (b *Backend) Close() error {
	if b.rotator == nil {
		return nil
	}
	return b.rotator.Close()
}
