// Package app assembles the pcmpipe pipelines used by the binaries: a
// file or tone played through the playback queue, and a file encoded into
// a container.
package app
