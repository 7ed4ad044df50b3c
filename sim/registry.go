package sim

import (
	"fmt"
	"sort"
)

// DefaultEnvID is the identifier under which the standard routing environment
// is registered.
const DefaultEnvID = "llm-router-v0"

// EnvFactory constructs a simulator from a configuration.
type EnvFactory func(cfg Config) (*Simulator, error)

// Registry maps string identifiers to environment factories so generic
// frameworks can construct simulators by name. It is a plain value passed
// around explicitly, not ambient global state.
type Registry struct {
	factories map[string]EnvFactory
}

// NewRegistry returns a registry preloaded with DefaultEnvID.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]EnvFactory)}
	// The default factory just applies the caller's config; it exists so the
	// standard environment is constructible by name like any other.
	if err := r.Register(DefaultEnvID, NewSimulator); err != nil {
		panic(err) // unreachable: the registry is empty
	}
	return r
}

// Register adds a factory under the given identifier.
// Registering an already-registered identifier is an error.
func (r *Registry) Register(id string, factory EnvFactory) error {
	if id == "" {
		return fmt.Errorf("environment id must be non-empty")
	}
	if factory == nil {
		return fmt.Errorf("environment %q: factory must be non-nil", id)
	}
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("environment %q already registered", id)
	}
	r.factories[id] = factory
	return nil
}

// Make constructs the environment registered under id with the given config.
func (r *Registry) Make(id string, cfg Config) (*Simulator, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q (registered: %v)", id, r.IDs())
	}
	return factory(cfg)
}

// IDs returns the sorted registered identifiers.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
