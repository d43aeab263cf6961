package extract

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// DefaultStrategy is used when a caller does not name a strategy.
const DefaultStrategy = "lexical"

// Registry holds the extraction strategies available to a process.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	for _, ex := range extractors {
		r.Register(ex)
	}
	return r
}

// Register adds an extractor, replacing one with the same name.
func (r *Registry) Register(ex Extractor) {
	if ex == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[strings.ToLower(ex.Name())] = ex
}

// Get returns the extractor registered under name. An empty name selects
// DefaultStrategy.
func (r *Registry) Get(name string) (Extractor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultStrategy
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	ex, ok := r.extractors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return ex, nil
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
