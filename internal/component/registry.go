package component

import (
	"fmt"
	"sync"
	"time"
)

type registryEntry struct {
	cfg     *Config
	created time.Time
	updated time.Time
}

// Registry holds the configurations available to a process, keyed by id.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*registryEntry
	now     func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithNow sets the clock used for metadata timestamps.
func WithNow(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]*registryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds cfg. Registering an id twice is an error; use Update to
// replace an existing configuration.
func (r *Registry) Register(cfg *Config) error {
	if cfg == nil || cfg.ID == "" {
		return &LoadError{Code: ErrCodeGeneric, Message: "config has no id"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[cfg.ID]; ok {
		return &LoadError{Code: ErrCodeDuplicate, Message: fmt.Sprintf("component %q already registered", cfg.ID)}
	}
	now := r.now()
	r.entries[cfg.ID] = &registryEntry{cfg: cfg, created: now, updated: now}
	r.order = append(r.order, cfg.ID)
	return nil
}

// Update replaces the configuration registered under cfg.ID, keeping its
// creation time and registration position.
func (r *Registry) Update(cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[cfg.ID]
	if !ok {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("component %q not registered", cfg.ID)}
	}
	e.cfg = cfg
	e.updated = r.now()
	return nil
}

// Get returns the configuration registered under id.
func (r *Registry) Get(id string) (*Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.cfg, true
}

// Metadata returns the registry view of the configuration under id.
func (r *Registry) Metadata(id string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Metadata{}, false
	}
	return metadataOf(e.cfg, e.created, e.updated), true
}

// List returns metadata for every registered configuration in
// registration order.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		out = append(out, metadataOf(e.cfg, e.created, e.updated))
	}
	return out
}

// Len reports the number of registered configurations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
