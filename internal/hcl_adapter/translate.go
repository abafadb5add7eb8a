// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/routecost/internal/config"
	"github.com/vk/routecost/internal/ctxlog"
)

// translateMaterial converts a material block into the agnostic model and
// returns its attributes for the step evaluation context.
func translateMaterial(ctx context.Context, m *Material) (*config.Material, map[string]cty.Value, error) {
	out := &config.Material{
		Name:  m.Name,
		CAS:   m.CAS,
		Notes: m.Notes,
		Raw:   m.Raw,
	}

	price, hasPrice, err := evalNumber(ctx, m.Price, "price", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("in material '%s': %w", m.Name, err)
	}
	if hasPrice {
		out.Price = &price
	}
	mw, hasMW, err := evalNumber(ctx, m.MolarMass, "molar_mass", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("in material '%s': %w", m.Name, err)
	}
	out.MolarMass = mw
	density, hasDensity, err := evalNumber(ctx, m.Density, "density", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("in material '%s': %w", m.Name, err)
	}
	out.Density = density

	attrs := map[string]cty.Value{
		"price":      numberOrNull(price, hasPrice),
		"molar_mass": numberOrNull(mw, hasMW),
		"density":    numberOrNull(density, hasDensity),
	}
	return out, attrs, nil
}

// translateStep converts the HCL-specific step schema into the agnostic model.
func translateStep(ctx context.Context, s *Step, evalCtx *hcl.EvalContext) (*config.Step, error) {
	logger := ctxlog.FromContext(ctx).With("step_output", s.Output)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL step to internal config model.")

	out := &config.Step{Output: s.Output, Basis: s.Basis}

	var err error
	if out.Yield, _, err = evalNumber(ctx, s.Yield, "yield", evalCtx); err != nil {
		return nil, fmt.Errorf("in step '%s': %w", s.Output, err)
	}
	if out.FixedCost, _, err = evalNumber(ctx, s.FixedCost, "fixed_cost", evalCtx); err != nil {
		return nil, fmt.Errorf("in step '%s': %w", s.Output, err)
	}

	for _, in := range s.Inputs {
		ci := &config.Input{
			Compound:   in.Compound,
			Role:       in.Role,
			RelativeTo: in.RelativeTo,
		}
		if ci.Equivalents, _, err = evalNumber(ctx, in.Equivalents, "equivalents", evalCtx); err != nil {
			return nil, fmt.Errorf("in step '%s', input '%s': %w", s.Output, in.Compound, err)
		}
		if ci.Volumes, _, err = evalNumber(ctx, in.Volumes, "volumes", evalCtx); err != nil {
			return nil, fmt.Errorf("in step '%s', input '%s': %w", s.Output, in.Compound, err)
		}
		if ci.Recycle, _, err = evalNumber(ctx, in.Recycle, "recycle", evalCtx); err != nil {
			return nil, fmt.Errorf("in step '%s', input '%s': %w", s.Output, in.Compound, err)
		}
		out.Inputs = append(out.Inputs, ci)
	}
	return out, nil
}

// translateRoute converts the HCL-specific route schema into the agnostic model.
func translateRoute(ctx context.Context, r *Route, evalCtx *hcl.EvalContext) (*config.Route, error) {
	q, ok, err := evalNumber(ctx, r.Quantity, "quantity", evalCtx)
	if err != nil {
		return nil, fmt.Errorf("in route '%s': %w", r.Name, err)
	}
	if !ok {
		q = 1
	}
	return &config.Route{Name: r.Name, Target: r.Target, Quantity: q}, nil
}
