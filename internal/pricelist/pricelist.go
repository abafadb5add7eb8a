// Package pricelist reads raw-material price lists from TOML files.
//
// A price list is a sequence of material tables:
//
//	[[material]]
//	name  = "ethanol"
//	price = 1.2
//	density = 0.789
package pricelist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/material"
)

// ErrInvalidList is returned for structurally invalid price lists.
var ErrInvalidList = errors.New("invalid price list")

// Entry is one `[[material]]` table.
type Entry struct {
	Name      string   `toml:"name"`
	Price     *float64 `toml:"price"`
	MolarMass float64  `toml:"molar_mass"`
	Density   float64  `toml:"density"`
	CAS       string   `toml:"cas"`
	Notes     string   `toml:"notes"`
}

// List is a decoded price list.
type List struct {
	// Source is informational, e.g. a supplier name or quote date.
	Source    string  `toml:"source"`
	Materials []Entry `toml:"material"`
}

// Load reads and parses the price list at path.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	list, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return list, nil
}

// Parse decodes a price list. Unknown keys, unnamed entries and names listed
// twice are rejected.
func Parse(data []byte) (*List, error) {
	var list List
	md, err := toml.Decode(string(data), &list)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidList, strings.Join(keys, ", "))
	}

	var errs error
	seen := make(map[string]int, len(list.Materials))
	for i, e := range list.Materials {
		if e.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: material #%d has no name", ErrInvalidList, i+1))
			continue
		}
		if first, dup := seen[e.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%w: %q listed as material #%d and #%d", ErrInvalidList, e.Name, first+1, i+1))
			continue
		}
		seen[e.Name] = i
	}
	if errs != nil {
		return nil, errs
	}
	return &list, nil
}

// Apply merges the list into reg. Materials already in the registry get
// their price refreshed; new materials are registered with all their
// properties. It returns the number of prices applied.
func (l *List) Apply(ctx context.Context, reg *material.Registry) (int, error) {
	logger := ctxlog.FromContext(ctx)

	var (
		errs    error
		applied int
	)
	for _, e := range l.Materials {
		if _, exists := reg.Material(e.Name); exists {
			if e.Price == nil {
				continue
			}
			if err := reg.SetPrice(e.Name, *e.Price); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			applied++
			continue
		}

		err := reg.RegisterMaterial(material.Material{
			Name:      e.Name,
			Price:     e.Price,
			MolarMass: e.MolarMass,
			Density:   e.Density,
			CAS:       e.CAS,
			Notes:     e.Notes,
		})
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if e.Price != nil {
			applied++
		}
	}

	logger.Debug("Applied price list.", "source", l.Source, "entries", len(l.Materials), "prices", applied)
	return applied, errs
}
