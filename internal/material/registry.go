package material

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/multierr"
)

// Registry maps compound names to catalog entries.
type Registry struct {
	mutex       sync.RWMutex
	materials   map[string]Material
	overwritten map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		materials:   make(map[string]Material),
		overwritten: make(map[string]int),
	}
}

// Register sets the unit price of a compound, creating the entry if needed.
// Registering the same compound twice overwrites the price and is recorded
// so that Validate can report it.
func (r *Registry) Register(id string, price float64) error {
	if err := ValidatePrice(id, price); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	m, exists := r.materials[id]
	if exists {
		r.overwritten[id]++
	}
	m.Name = id
	m.Price = PriceOf(price)
	r.materials[id] = m
	return nil
}

// RegisterMaterial inserts a full catalog entry. The same overwrite rules as
// Register apply.
func (r *Registry) RegisterMaterial(m Material) error {
	if m.Name == "" {
		return fmt.Errorf("material name must not be empty")
	}
	if m.Price != nil {
		if err := ValidatePrice(m.Name, *m.Price); err != nil {
			return err
		}
	}
	if m.MolarMass < 0 || m.Density < 0 {
		return fmt.Errorf("material %q: molar mass and density must not be negative", m.Name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.materials[m.Name]; exists {
		r.overwritten[m.Name]++
	}
	r.materials[m.Name] = m
	return nil
}

// SetPrice updates the price of a compound without treating it as a
// duplicate registration. Price feeds and what-if overrides use it.
func (r *Registry) SetPrice(id string, price float64) error {
	if err := ValidatePrice(id, price); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	m := r.materials[id]
	m.Name = id
	m.Price = PriceOf(price)
	r.materials[id] = m
	return nil
}

// Lookup returns the unit price of a compound. Compounds that are absent or
// registered without a price yield a *NotFoundError.
func (r *Registry) Lookup(id string) (float64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	m, ok := r.materials[id]
	if !ok || m.Price == nil {
		return 0, &NotFoundError{Compound: id}
	}
	return *m.Price, nil
}

// Material returns the catalog entry for a compound.
func (r *Registry) Material(id string) (Material, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	m, ok := r.materials[id]
	return m, ok
}

// Names returns all registered compound names, sorted.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.materials))
	for name := range r.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of catalog entries.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.materials)
}

// Validate reports every compound that was registered more than once.
func (r *Registry) Validate() error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.overwritten))
	for name := range r.overwritten {
		names = append(names, name)
	}
	sort.Strings(names)

	var err error
	for _, name := range names {
		err = multierr.Append(err, fmt.Errorf("%w: %q registered %d times", ErrDuplicateMaterial, name, r.overwritten[name]+1))
	}
	return err
}

// Clone returns a deep copy of the registry. The copy does not inherit the
// duplicate-registration history.
func (r *Registry) Clone() *Registry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	c := NewRegistry()
	for name, m := range r.materials {
		if m.Price != nil {
			m.Price = PriceOf(*m.Price)
		}
		c.materials[name] = m
	}
	return c
}

// ValidatePrice reports ErrInvalidPrice unless price is finite and non-negative.
func ValidatePrice(id string, price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return fmt.Errorf("%w for %q: %v", ErrInvalidPrice, id, price)
	}
	return nil
}
