package variant

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the variants available to a process by name.
type Registry struct {
	mu       sync.RWMutex
	variants map[string]*Variant
	builtin  map[string]bool
}

// NewRegistry returns a registry preloaded with the built-in variants.
func NewRegistry() *Registry {
	r := &Registry{
		variants: make(map[string]*Variant),
		builtin:  make(map[string]bool),
	}
	for _, v := range Builtins() {
		r.variants[v.Name] = v
		r.builtin[v.Name] = true
	}
	return r
}

// Register validates and adds a variant. A name already in use is an error.
func (r *Registry) Register(v *Variant) error {
	if v == nil {
		return fmt.Errorf("variant cannot be nil")
	}
	if err := v.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.variants[v.Name]; exists {
		return fmt.Errorf("variant %q is already registered", v.Name)
	}
	r.variants[v.Name] = v
	return nil
}

// LoadFile registers every variant defined in a YAML file.
func (r *Registry) LoadFile(path string) error {
	variants, err := LoadFile(path)
	if err != nil {
		return err
	}
	for _, v := range variants {
		if err := r.Register(v); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// Get returns the named variant.
func (r *Registry) Get(name string) (*Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[name]
	if !ok {
		return nil, fmt.Errorf("unknown variant %q (available: %v)", name, r.namesLocked())
	}
	return v, nil
}

// Names returns the registered variant names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summaries describes every registered variant in name order.
func (r *Registry) Summaries() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.variants))
	for _, name := range r.namesLocked() {
		v := r.variants[name]
		out = append(out, Summary{
			Name:        v.Name,
			Description: v.Description,
			Columns:     append([]string(nil), v.Table.Columns...),
			Policy:      v.Policy.String(),
			Builtin:     r.builtin[name],
		})
	}
	return out
}
