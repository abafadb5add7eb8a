package config

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/material"
	"github.com/vk/routecost/internal/route"
)

var (
	// ErrRouteNotFound is returned when a named route is not defined.
	ErrRouteNotFound = errors.New("route not found")
	// ErrAmbiguousRoute is returned when no route name is given and the
	// model defines more than one.
	ErrAmbiguousRoute = errors.New("route name required")
)

// Apply registers the model's materials in reg and adds its steps to g.
// Every failure is collected so a broken file reports all its problems at
// once.
func (m *Model) Apply(ctx context.Context, reg *material.Registry, g *route.Graph) error {
	logger := ctxlog.FromContext(ctx)

	var errs error
	for _, mat := range m.Materials {
		err := reg.RegisterMaterial(material.Material{
			Name:      mat.Name,
			Price:     mat.Price,
			MolarMass: mat.MolarMass,
			Density:   mat.Density,
			CAS:       mat.CAS,
			Notes:     mat.Notes,
		})
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if mat.Raw {
			g.DeclareRawMaterial(mat.Name)
		}
	}

	for _, s := range m.Steps {
		step := route.Step{
			Output:    s.Output,
			Yield:     s.Yield,
			FixedCost: s.FixedCost,
			Basis:     route.Basis(s.Basis),
		}
		for _, in := range s.Inputs {
			step.Inputs = append(step.Inputs, route.Input{
				Compound:    in.Compound,
				Equivalents: in.Equivalents,
				Role:        route.Role(in.Role),
				Volumes:     in.Volumes,
				RelativeTo:  in.RelativeTo,
				Recycle:     in.Recycle,
			})
		}
		if err := g.AddStep(step); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	logger.Debug("Applied route model.", "materials", len(m.Materials), "steps", len(m.Steps), "errors", len(multierr.Errors(errs)))
	return errs
}

// Route returns the route called name. An empty name selects the only
// route of the model.
func (m *Model) Route(name string) (*Route, error) {
	if name == "" {
		switch len(m.Routes) {
		case 0:
			return nil, fmt.Errorf("%w: no route blocks defined", ErrRouteNotFound)
		case 1:
			return m.Routes[0], nil
		default:
			return nil, fmt.Errorf("%w: %d routes defined", ErrAmbiguousRoute, len(m.Routes))
		}
	}
	for _, r := range m.Routes {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRouteNotFound, name)
}
