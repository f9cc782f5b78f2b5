package model

import (
	"fmt"
	"sync"
)

// Factory builds a Model for a model identifier such as "gpt-4o".
type Factory func(name string) (Model, error)

// Registry resolves model identifiers to Model instances. Explicitly
// registered models win; other names are built once through the factory and
// cached so agents sharing an identifier share a client and its breaker.
type Registry struct {
	mu      sync.Mutex
	models  map[string]Model
	factory Factory
}

// NewRegistry returns a registry backed by factory, which may be nil.
func NewRegistry(factory Factory) *Registry {
	return &Registry{models: make(map[string]Model), factory: factory}
}

// Register adds m under name.
func (r *Registry) Register(name string, m Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[name] = m
}

// Resolve returns the model registered for name, building it on first use.
func (r *Registry) Resolve(name string) (Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.models[name]; ok {
		return m, nil
	}
	if r.factory == nil {
		return nil, fmt.Errorf("model %q not registered", name)
	}

	m, err := r.factory(name)
	if err != nil {
		return nil, fmt.Errorf("build model %q: %w", name, err)
	}
	r.models[name] = m
	return m, nil
}
