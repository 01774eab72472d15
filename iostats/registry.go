package iostats

import (
	"fmt"
	"io"
	"sync"
)

// Provider is anything that can render a statistics line.
type Provider interface {
	ProviderName() string
	Describe() string
}

// Registry collects providers for periodic or on-demand reporting.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds p. Registering the same provider twice is a no-op.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.providers {
		if existing == p {
			return
		}
	}
	r.providers = append(r.providers, p)
}

// Unregister removes p if present.
func (r *Registry) Unregister(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.providers {
		if existing == p {
			r.providers = append(r.providers[:i], r.providers[i+1:]...)
			return
		}
	}
}

// Providers returns the registered providers in registration order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Report writes one line per provider: "<name>, <description>".
func (r *Registry) Report(w io.Writer) error {
	for _, p := range r.Providers() {
		if _, err := fmt.Fprintf(w, "%s, %s\n", p.ProviderName(), p.Describe()); err != nil {
			return err
		}
	}
	return nil
}
