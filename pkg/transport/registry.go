package transport

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// TransportConfig is implemented by each strategy's configuration.
type TransportConfig interface {
	// TransportType is the registry key the config belongs to.
	TransportType() string
	Validate() error
}

// Factory builds a transport from its configuration.
type Factory func(config TransportConfig) (Transport, error)

// Registry maps strategy names to factories so configuration can pick the
// transport by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	_ = r.Register("http", typed(NewHTTP))
	_ = r.Register("resty", typed(NewResty))
	_ = r.Register("offline", typed(newOfflineFromConfig))
	return r
})

// DefaultRegistry returns the shared registry holding http, resty and offline.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

// typed adapts a constructor taking its concrete config type to a Factory.
func typed[C TransportConfig, T Transport](build func(C) (T, error)) Factory {
	return func(config TransportConfig) (Transport, error) {
		cfg, ok := config.(C)
		if !ok {
			var want C
			return nil, fmt.Errorf("transport %q needs %T, got %T", config.TransportType(), want, config)
		}
		t, err := build(cfg)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Register fails when name is empty or already taken.
func (r *Registry) Register(name string, factory Factory) error {
	switch {
	case name == "":
		return fmt.Errorf("transport name cannot be empty")
	case factory == nil:
		return fmt.Errorf("transport %q: nil factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.factories[name]; taken {
		return fmt.Errorf("transport %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create validates config, checks it belongs to name, and builds the
// transport.
func (r *Registry) Create(name string, config TransportConfig) (Transport, error) {
	if config == nil {
		return nil, fmt.Errorf("transport %q: nil configuration", name)
	}
	if got := config.TransportType(); got != name {
		return nil, fmt.Errorf("transport %q: configuration is for %q", name, got)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("transport %q: %w", name, err)
	}

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("transport %q is not registered", name)
	}
	return factory(config)
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}
