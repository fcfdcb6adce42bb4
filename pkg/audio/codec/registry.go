// ABOUTME: Codec backend registry
// ABOUTME: Maps codec IDs to backends; Default holds the built-in set
package codec

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownCodec is returned when no backend is registered for an ID
var ErrUnknownCodec = errors.New("unknown codec")

// Registry maps codec IDs to backends. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	backends map[ID]Backend
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{backends: make(map[ID]Backend)}
}

// Register installs b for id, replacing any previous backend
func (r *Registry) Register(id ID, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[id] = b
}

// Lookup returns the backend for id
func (r *Registry) Lookup(id ID) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, id)
	}
	return b, nil
}

// IDs lists the registered codecs in ID order
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]ID, 0, len(r.backends))
	for id := range r.backends {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of built-in backends
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register(Opus, NewOpus())
		defaultRegistry.Register(FLAC, NewFLAC())
		defaultRegistry.Register(PCM, NewPCM())
		defaultRegistry.Register(PCMFloatPlanar, NewPCMFloatPlanar())
	})
	return defaultRegistry
}
