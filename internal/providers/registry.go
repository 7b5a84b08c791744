package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds references to vision and adjudicator backends and provides
// thread-safe access by name.
type Registry struct {
	mu           sync.RWMutex
	vision       map[string]VisionBackend
	adjudicators map[string]AdjudicatorBackend
	logger       *slog.Logger
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		vision:       make(map[string]VisionBackend),
		adjudicators: make(map[string]AdjudicatorBackend),
		logger:       slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterVision registers a vision backend by name.
func (r *Registry) RegisterVision(name string, backend VisionBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vision[name] = backend
	if r.logger != nil {
		r.logger.Info("registered vision backend", "name", name)
	}
}

// RegisterAdjudicator registers an adjudicator backend by name.
func (r *Registry) RegisterAdjudicator(name string, backend AdjudicatorBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjudicators[name] = backend
	if r.logger != nil {
		r.logger.Info("registered adjudicator backend", "name", name)
	}
}

// GetVision returns a vision backend by name.
func (r *Registry) GetVision(name string) (VisionBackend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	backend, ok := r.vision[name]
	if !ok {
		return nil, fmt.Errorf("vision backend not registered: %s", name)
	}
	return backend, nil
}

// GetAdjudicator returns an adjudicator backend by name.
func (r *Registry) GetAdjudicator(name string) (AdjudicatorBackend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	backend, ok := r.adjudicators[name]
	if !ok {
		return nil, fmt.Errorf("adjudicator backend not registered: %s", name)
	}
	return backend, nil
}

// VisionNames lists registered vision backends.
func (r *Registry) VisionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.vision))
	for name := range r.vision {
		names = append(names, name)
	}
	return names
}
