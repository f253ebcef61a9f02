package defcell

import (
	"sort"
	"sync"
)

// Registry maps cell names to their canonical Cell instances. Insertion is
// idempotent per name: the first registration wins and later registrations
// under the same name return the existing cell unchanged.
type Registry struct {
	mu    sync.RWMutex
	cells map[string]*Cell
}

// NewRegistry creates an empty registry. Most code uses the process-wide
// default registry through the package-level functions; independent
// registries exist mainly for tests.
func NewRegistry() *Registry {
	return &Registry{
		cells: make(map[string]*Cell),
	}
}

// Cell returns the cell registered under name, creating it with value on
// first use. If the name is already registered the existing cell is
// returned and value is ignored — creation is idempotent, not an update.
// Use Set on the cell to change its value.
func (r *Registry) Cell(name string, value any) *Cell {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.cells[name]; ok {
		return c
	}

	c := &Cell{name: name, value: value}
	r.cells[name] = c
	return c
}

// Lookup returns the cell registered under name without creating one.
func (r *Registry) Lookup(name string) (*Cell, error) {
	r.mu.RLock()
	c, ok := r.cells[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotRegisteredError{Name: name}
	}
	return c, nil
}

// CellFrom registers or fetches a cell from a keyword-style argument map.
// Two shapes are accepted:
//
//	CellFrom(map[string]any{"name": "x", "value": 1})  // explicit pair
//	CellFrom(map[string]any{"x": 1})                   // key is the name
//
// Anything else (empty map, extra keys, a non-string "name", or the
// reserved keys "name"/"value" used alone) is a RegistrationConflictError.
func (r *Registry) CellFrom(kw map[string]any) (*Cell, error) {
	keys := make([]string, 0, len(kw))
	for k := range kw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	switch len(kw) {
	case 1:
		key := keys[0]
		if key == "name" || key == "value" {
			return nil, &RegistrationConflictError{
				Keys:   keys,
				Reason: "reserved key given without its counterpart",
			}
		}
		return r.Cell(key, kw[key]), nil

	case 2:
		if keys[0] != "name" || keys[1] != "value" {
			return nil, &RegistrationConflictError{
				Keys:   keys,
				Reason: "two keys must be exactly \"name\" and \"value\"",
			}
		}
		name, ok := kw["name"].(string)
		if !ok {
			return nil, &RegistrationConflictError{
				Keys:   keys,
				Reason: "\"name\" must be a string",
			}
		}
		return r.Cell(name, kw["value"]), nil

	default:
		return nil, &RegistrationConflictError{
			Keys:   keys,
			Reason: "expected exactly one keyword, or a name/value pair",
		}
	}
}

// Names returns the registered cell names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cells))
	for name := range r.cells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of registered cells.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cells)
}

// defaultRegistry lives for the process lifetime; there is no teardown
// contract beyond process exit.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by the
// package-level functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// NewCell returns the cell registered under name in the default registry,
// creating it with value on first use. See Registry.Cell for the
// idempotence contract.
func NewCell(name string, value any) *Cell {
	return defaultRegistry.Cell(name, value)
}

// Lookup returns the cell registered under name in the default registry.
func Lookup(name string) (*Cell, error) {
	return defaultRegistry.Lookup(name)
}

// CellFrom registers or fetches a cell in the default registry from a
// keyword-style argument map. See Registry.CellFrom.
func CellFrom(kw map[string]any) (*Cell, error) {
	return defaultRegistry.CellFrom(kw)
}
