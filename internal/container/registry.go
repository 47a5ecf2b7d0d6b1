package container

import (
	"slices"
	"sync"

	"github.com/danpasecinic/beanpod/internal/reflect"
)

// Registry holds definitions in registration order. It is written during
// registration and read-mostly afterwards.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]*Definition
	order  []string
	byCap  map[string][]string
	closed bool
}

func NewRegistry() *Registry {
	return &Registry{
		defs:  make(map[string]*Definition),
		byCap: make(map[string][]string),
	}
}

func (r *Registry) Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errRegistrationClosed
	}
	if _, exists := r.defs[def.ID]; exists {
		return errDuplicateBeanID(def.ID)
	}

	r.defs[def.ID] = def
	r.order = append(r.order, def.ID)
	r.index(def)
	return nil
}

// Replace swaps the definition registered under def.ID, or adds it.
func (r *Registry) Replace(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errRegistrationClosed
	}
	if _, exists := r.defs[def.ID]; exists {
		r.unindex(def.ID)
	} else {
		r.order = append(r.order, def.ID)
	}

	r.defs[def.ID] = def
	r.index(def)
	return nil
}

// Remove drops the definition registered under id, if any.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[id]; !exists {
		return
	}
	delete(r.defs, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	r.unindex(id)
}

func (r *Registry) index(def *Definition) {
	for _, c := range def.Capabilities {
		if !slices.Contains(r.byCap[c.Key], def.ID) {
			r.byCap[c.Key] = append(r.byCap[c.Key], def.ID)
		}
	}
}

func (r *Registry) unindex(id string) {
	for key, ids := range r.byCap {
		r.byCap[key] = slices.DeleteFunc(ids, func(s string) bool { return s == id })
		if len(r.byCap[key]) == 0 {
			delete(r.byCap, key)
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
}

func (r *Registry) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.closed
}

func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.defs[id]
	return exists
}

func (r *Registry) ByID(id string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.defs[id]
	if !exists {
		return nil, errBeanNotFound(id)
	}
	return def, nil
}

// ByCapability returns the definitions providing c in registration order.
// When nothing declares c and c is an interface, every definition whose
// produced type implements it matches.
func (r *Registry) ByCapability(c Capability) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ids := r.byCap[c.Key]; len(ids) > 0 {
		return r.lookup(ids)
	}

	if !reflect.IsInterface(c.Type) {
		return nil
	}

	var matches []*Definition
	for _, id := range r.order {
		if def := r.defs[id]; reflect.Assignable(def.Type, c.Type) {
			matches = append(matches, def)
		}
	}
	return matches
}

func (r *Registry) lookup(ids []string) []*Definition {
	positions := make(map[string]int, len(r.order))
	for i, id := range r.order {
		positions[id] = i
	}

	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b string) int { return positions[a] - positions[b] })

	defs := make([]*Definition, len(sorted))
	for i, id := range sorted {
		defs[i] = r.defs[id]
	}
	return defs
}

// Unique resolves c to exactly one definition.
func (r *Registry) Unique(c Capability) (*Definition, error) {
	matches := r.ByCapability(c)

	switch len(matches) {
	case 0:
		return nil, errCapabilityNotFound(c.Key)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, def := range matches {
			ids[i] = def.ID
		}
		return nil, errAmbiguous(c.Key, ids)
	}
}

func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

func (r *Registry) Definitions() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, len(r.order))
	for i, id := range r.order {
		defs[i] = r.defs[id]
	}
	return defs
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.defs)
}
