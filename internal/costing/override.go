package costing

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vk/routecost/internal/material"
	"github.com/vk/routecost/internal/route"
)

// Field names the value an Override changes.
type Field string

const (
	FieldPrice       Field = "price"
	FieldEquivalents Field = "equivalents"
	FieldYield       Field = "yield"
	FieldFixedCost   Field = "fixed_cost"
)

// Override is a what-if change applied to copies of a graph and registry.
//
// Price sets the registry price of Compound. A produced compound is then
// bought at that price instead of made. Equivalents changes the
// equivalents of Compound wherever it is an input, or only in the step
// producing Step when Step is set. Yield and FixedCost change the step
// producing Compound.
type Override struct {
	Compound string
	Field    Field
	Value    float64
	Step     string
}

func (o Override) String() string {
	if o.Step != "" {
		return fmt.Sprintf("%s[%s].%s=%g", o.Compound, o.Step, o.Field, o.Value)
	}
	return fmt.Sprintf("%s.%s=%g", o.Compound, o.Field, o.Value)
}

// ApplyOverrides returns clones of g and reg with the overrides applied in
// order. The inputs are left untouched.
func ApplyOverrides(g *route.Graph, reg *material.Registry, overrides ...Override) (*route.Graph, *material.Registry, error) {
	g = g.Clone()
	reg = reg.Clone()
	for _, o := range overrides {
		if err := apply(g, reg, o); err != nil {
			return nil, nil, fmt.Errorf("override %s: %w", o, err)
		}
	}
	return g, reg, nil
}

func apply(g *route.Graph, reg *material.Registry, o Override) error {
	switch o.Field {
	case FieldPrice:
		if err := material.ValidatePrice(o.Compound, o.Value); err != nil {
			return err
		}
		s, produced := g.Producer(o.Compound)
		switch {
		case produced && !s.IsSourcing():
			// Bought instead of made: the compound's step becomes a plain
			// purchase and nothing upstream of it is costed.
			g.DeclareRawMaterial(o.Compound)
			if err := g.ReplaceStep(route.Step{Output: o.Compound, Yield: 1}); err != nil {
				return err
			}
		case !produced:
			if _, known := reg.Material(o.Compound); !known && !slices.Contains(g.Compounds(), o.Compound) {
				return fmt.Errorf("%w: unknown compound %q", ErrInvalidOverride, o.Compound)
			}
		}
		return reg.SetPrice(o.Compound, o.Value)

	case FieldYield, FieldFixedCost:
		s, ok := g.Producer(o.Compound)
		if !ok {
			return fmt.Errorf("%w: no step produces %q", ErrInvalidOverride, o.Compound)
		}
		if o.Field == FieldYield {
			s.Yield = o.Value
		} else {
			s.FixedCost = o.Value
		}
		return g.ReplaceStep(s)

	case FieldEquivalents:
		matched := false
		for _, s := range g.Steps() {
			if o.Step != "" && s.Output != o.Step {
				continue
			}
			changed := false
			for i := range s.Inputs {
				if s.Inputs[i].Compound == o.Compound && !s.Inputs[i].IsSolvent() {
					s.Inputs[i].Equivalents = o.Value
					changed = true
				}
			}
			if !changed {
				continue
			}
			matched = true
			if err := g.ReplaceStep(s); err != nil {
				return err
			}
		}
		if !matched {
			return fmt.Errorf("%w: %q is not a reagent of any matching step", ErrInvalidOverride, o.Compound)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidOverride, o.Field)
	}
}

// ParseField converts user input into a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldPrice, FieldEquivalents, FieldYield, FieldFixedCost:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown field %q (want price, equivalents, yield or fixed_cost)", ErrInvalidOverride, s)
}

// ParseOverride reads an override in the form printed by Override.String:
// `compound.field=value` or `compound[step].field=value`.
func ParseOverride(s string) (Override, error) {
	lhs, value, ok := strings.Cut(s, "=")
	if !ok {
		return Override{}, fmt.Errorf("%w: %q is not of the form compound.field=value", ErrInvalidOverride, s)
	}
	o, err := ParseTarget(lhs)
	if err != nil {
		return Override{}, err
	}
	if o.Value, err = strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return Override{}, fmt.Errorf("%w: value of %q: %v", ErrInvalidOverride, s, err)
	}
	return o, nil
}

// ParseTarget reads the `compound.field` or `compound[step].field` part of
// an override, leaving Value unset. Scans use it to name the swept value.
func ParseTarget(s string) (Override, error) {
	s = strings.TrimSpace(s)
	dot := strings.LastIndex(s, ".")
	if dot <= 0 {
		return Override{}, fmt.Errorf("%w: %q is not of the form compound.field", ErrInvalidOverride, s)
	}
	field, err := ParseField(s[dot+1:])
	if err != nil {
		return Override{}, err
	}
	o := Override{Compound: s[:dot], Field: field}
	if open := strings.Index(o.Compound, "["); open >= 0 {
		if !strings.HasSuffix(o.Compound, "]") || open == 0 {
			return Override{}, fmt.Errorf("%w: malformed step selector in %q", ErrInvalidOverride, s)
		}
		o.Step = o.Compound[open+1 : len(o.Compound)-1]
		o.Compound = o.Compound[:open]
	}
	return o, nil
}
