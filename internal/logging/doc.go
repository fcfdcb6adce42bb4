// Package logging wires decred/slog subsystem loggers to stdout and a
// logrotate-managed file.
package logging
