// internal/protocol/transport.go
package protocol

import (
	"context"
	"sort"
	"sync"

	"receipt-bridge/internal/model"
	"receipt-bridge/pkg/printerr"
)

// Transport delivers a compiled command buffer to the printer a profile names.
// Implementations never retry and never modify data.
type Transport interface {
	Kind() model.TransportKind
	Send(ctx context.Context, profile *model.PrinterProfile, data []byte) error
}

// Connection is a byte stream to one printer, opened per job
type Connection interface {
	Open(ctx context.Context) error
	Write(ctx context.Context, data []byte) error
	Close() error
	IsOpen() bool
}

// Registry maps transport kinds to their implementation
type Registry struct {
	mu         sync.RWMutex
	transports map[model.TransportKind]Transport
}

// NewRegistry creates a registry holding transports
func NewRegistry(transports ...Transport) *Registry {
	r := &Registry{transports: make(map[model.TransportKind]Transport, len(transports))}
	for _, t := range transports {
		r.Register(t)
	}
	return r
}

// Register adds or replaces the transport for its kind
func (r *Registry) Register(t Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transports[t.Kind()] = t
}

// Get returns the transport for kind
func (r *Registry) Get(kind model.TransportKind) (Transport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transports[kind]
	if !ok {
		return nil, printerr.Newf(printerr.CodeConfiguration, "transport %q is not available on this host", kind)
	}
	return t, nil
}

// Kinds lists the registered transport kinds in stable order
func (r *Registry) Kinds() []model.TransportKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]model.TransportKind, 0, len(r.transports))
	for k := range r.transports {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
