package costing

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/material"
	"github.com/vk/routecost/internal/route"
)

// Calculate computes the cost of delivering quantity units of mass of target
// through graph, pricing raw materials from reg. An empty target means the
// graph's designated target. Any validation failure aborts the run; no
// partial result is returned.
func Calculate(ctx context.Context, g *route.Graph, reg *material.Registry, target string, quantity float64) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if target == "" {
		target = g.Target()
	}
	logger = logger.With("target", target, "quantity", quantity)
	logger.Debug("Calculate: starting costing run.")

	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}
	if err := g.ValidateTarget(target, reg); err != nil {
		return nil, err
	}
	logger.Debug("Calculate: route validation passed.")

	plan, err := newPlan(g, reg, target)
	if err != nil {
		return nil, err
	}
	logger.Debug("Calculate: step plan built.", "steps", len(plan.steps), "compounds", len(plan.compounds))
	for _, ps := range plan.steps {
		if ps.step.IsSourcing() {
			continue
		}
		if price, err := reg.Lookup(ps.step.Output); err == nil {
			logger.Debug("Calculate: registry price shadowed by producing step.", "compound", ps.step.Output, "price", price)
		}
	}

	demand, depth := plan.demand()
	costs, err := plan.unitCosts()
	if err != nil {
		return nil, err
	}

	res := plan.result(quantity, demand, depth, costs)
	logger.Debug("Calculate: costing run finished.", "unit_cost", res.UnitCost, "total_cost", res.TotalCost)
	return res, nil
}

// plannedStep is a route step with its per-input base ratios resolved.
// base[i] is the input mass per unit of theoretical output, before yield.
type plannedStep struct {
	step route.Step
	base []float64
}

// plan is the per-run working table. It is built from read-only copies of
// the graph steps and never touches the graph again.
type plan struct {
	target    string
	reg       *material.Registry
	steps     []plannedStep // topological order, target ancestors only
	producer  map[string]int
	compounds []string
}

func newPlan(g *route.Graph, reg *material.Registry, target string) (*plan, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	ancestors := g.Ancestors(target)
	wanted := make(map[string]struct{}, len(ancestors))
	for _, c := range ancestors {
		wanted[c] = struct{}{}
	}

	p := &plan{
		target:    target,
		reg:       reg,
		producer:  make(map[string]int),
		compounds: ancestors,
	}
	for _, s := range order {
		if _, ok := wanted[s.Output]; !ok {
			continue
		}
		base, err := baseRatios(s, reg)
		if err != nil {
			return nil, err
		}
		p.producer[s.Output] = len(p.steps)
		p.steps = append(p.steps, plannedStep{step: s, base: base})
	}
	return p, nil
}

// baseRatios resolves every input of a step to a mass ratio per unit of
// theoretical output.
func baseRatios(s route.Step, reg *material.Registry) ([]float64, error) {
	base := make([]float64, len(s.Inputs))
	pos := make(map[string]int, len(s.Inputs))

	var outMW float64
	if s.Basis == route.BasisMolar {
		m, _ := reg.Material(s.Output)
		if m.MolarMass <= 0 {
			return nil, &PropertyError{Step: s.Output, Compound: s.Output, Err: ErrMissingMolarMass}
		}
		outMW = m.MolarMass
	}

	for i, in := range s.Inputs {
		pos[in.Compound] = i
		if in.IsSolvent() {
			continue
		}
		base[i] = in.Equivalents
		if s.Basis == route.BasisMolar {
			m, _ := reg.Material(in.Compound)
			if m.MolarMass <= 0 {
				return nil, &PropertyError{Step: s.Output, Compound: in.Compound, Err: ErrMissingMolarMass}
			}
			base[i] = in.Equivalents * m.MolarMass / outMW
		}
	}

	// Solvents reference reagents, which are all resolved above.
	for i, in := range s.Inputs {
		if !in.IsSolvent() {
			continue
		}
		m, _ := reg.Material(in.Compound)
		if m.Density <= 0 {
			return nil, &PropertyError{Step: s.Output, Compound: in.Compound, Err: ErrMissingDensity}
		}
		base[i] = in.Volumes * m.Density * (1 - in.Recycle) * base[pos[in.RelativeTo]]
	}
	return base, nil
}

// demand computes, for every compound feeding the target, the mass consumed
// per unit mass of target, and its depth below the target. Steps are
// visited consumers-first, so each output's demand is final before it is
// pushed to the output's inputs.
func (p *plan) demand() (map[string]float64, map[string]int) {
	demand := map[string]float64{p.target: 1}
	depth := map[string]int{p.target: 0}

	for i := len(p.steps) - 1; i >= 0; i-- {
		ps := p.steps[i]
		out := ps.step.Output
		d := demand[out]
		for j, in := range ps.step.Inputs {
			demand[in.Compound] += d * ps.base[j] / ps.step.Yield
			if depth[out]+1 > depth[in.Compound] {
				depth[in.Compound] = depth[out] + 1
			}
		}
	}
	return demand, depth
}

// unitCosts rolls costs up from raw materials in topological order.
func (p *plan) unitCosts() (map[string]float64, error) {
	costs := make(map[string]float64, len(p.compounds))

	// Leaves first. Sourcing-step outputs are priced here too and then
	// re-costed when their step comes up.
	for _, c := range p.compounds {
		idx, produced := p.producer[c]
		if produced && !p.steps[idx].step.IsSourcing() {
			continue
		}
		price, err := p.reg.Lookup(c)
		if err != nil {
			return nil, &MissingPriceError{Compound: c, Err: err}
		}
		costs[c] = price
	}

	for _, ps := range p.steps {
		s := ps.step
		if s.IsSourcing() {
			costs[s.Output] = (costs[s.Output] + s.FixedCost) / s.Yield
			continue
		}
		sum := s.FixedCost
		for j, in := range s.Inputs {
			sum += ps.base[j] * costs[in.Compound]
		}
		costs[s.Output] = sum / s.Yield
	}
	return costs, nil
}

func (p *plan) result(quantity float64, demand map[string]float64, depth map[string]int, costs map[string]float64) *Result {
	unit := costs[p.target]
	res := &Result{
		Target:    p.target,
		Quantity:  quantity,
		UnitCost:  unit,
		TotalCost: unit * quantity,
		index:     make(map[string]int, len(p.compounds)),
	}

	records := make([]Record, 0, len(p.compounds))
	for _, c := range p.compounds {
		idx, produced := p.producer[c]
		leaf := !produced || p.steps[idx].step.IsSourcing()

		rec := Record{
			Compound:     c,
			Kind:         KindIntermediate,
			Demand:       demand[c],
			Mass:         demand[c] * quantity,
			UnitCost:     costs[c],
			Contribution: demand[c] * quantity * costs[c],
			Depth:        depth[c],
		}
		if leaf {
			rec.Kind = KindRaw
			res.RawMaterialCost += demand[c] * costs[c]
			if unit > 0 {
				rec.Share = demand[c] * costs[c] / unit
			}
		}
		if c == p.target {
			rec.Kind = KindTarget
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Depth != records[j].Depth {
			return records[i].Depth < records[j].Depth
		}
		return records[i].Compound < records[j].Compound
	})
	for i, rec := range records {
		res.index[rec.Compound] = i
	}
	res.Records = records

	for _, ps := range p.steps {
		s := ps.step
		if s.IsSourcing() {
			continue
		}
		res.FixedCost += demand[s.Output] * s.FixedCost / s.Yield
		res.Steps = append(res.Steps, p.stepCost(ps, costs))
	}
	return res
}

func (p *plan) stepCost(ps plannedStep, costs map[string]float64) StepCost {
	s := ps.step
	sc := StepCost{
		Output:    s.Output,
		Yield:     s.Yield,
		FixedCost: s.FixedCost,
		UnitCost:  costs[s.Output],
		Inputs:    make([]InputCost, len(s.Inputs)),
	}
	for j, in := range s.Inputs {
		ratio := ps.base[j] / s.Yield
		ic := InputCost{
			Compound:  in.Compound,
			Role:      in.Role,
			MassRatio: ratio,
			UnitCost:  costs[in.Compound],
			Cost:      ratio * costs[in.Compound],
		}
		if sc.UnitCost > 0 {
			ic.Share = ic.Cost / sc.UnitCost
		}
		sc.Inputs[j] = ic
	}
	if sc.UnitCost > 0 {
		sc.FixedShare = s.FixedCost / s.Yield / sc.UnitCost
	}
	return sc
}
