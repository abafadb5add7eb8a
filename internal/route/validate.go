package route

import (
	"sort"

	"go.uber.org/multierr"
)

// PriceSource answers unit-price lookups for raw materials. The material
// registry implements it.
type PriceSource interface {
	Lookup(id string) (float64, error)
}

// Validate checks the whole graph before a costing run: a target must be
// set, the dependency graph must be acyclic, and every raw material feeding
// the target must be priced by prices. All unresolved raw materials are
// reported together. A nil prices skips the price check.
func (g *Graph) Validate(prices PriceSource) error {
	return g.ValidateTarget(g.Target(), prices)
}

// ValidateTarget is Validate for an explicit target compound instead of the
// graph's designated one.
func (g *Graph) ValidateTarget(target string, prices PriceSource) error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if target == "" {
		return ErrNoTarget
	}
	if err := g.detectCycles(); err != nil {
		return err
	}
	if prices == nil {
		return nil
	}

	var errs error
	for _, id := range g.leavesOf(target) {
		if _, err := prices.Lookup(id); err != nil {
			errs = multierr.Append(errs, &UnresolvedError{Compound: id, Err: err})
		}
	}
	return errs
}

// DetectCycles checks the graph for any cycles and returns a *CycleError
// describing the first one found.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.detectCycles()
}

// detectCycles is a depth-first search over compounds, following each
// compound to the inputs of its producing step. Steps are visited in
// insertion order so the reported chain is deterministic.
func (g *Graph) detectCycles() error {
	// permanent: compounds fully explored and known not to be on a cycle.
	// onStack: compounds on the current path, indexed into stack.
	permanent := make(map[string]bool)
	onStack := make(map[string]int)
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if pos, ok := onStack[id]; ok {
			chain := append([]string(nil), stack[pos:]...)
			return &CycleError{Chain: append(chain, id)}
		}

		onStack[id] = len(stack)
		stack = append(stack, id)

		if idx, ok := g.producers[id]; ok {
			for _, in := range g.steps[idx].Inputs {
				if err := visit(in.Compound); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, id)
		permanent[id] = true
		return nil
	}

	for _, s := range g.steps {
		if err := visit(s.Output); err != nil {
			return err
		}
	}
	return nil
}

// leavesOf returns, sorted, the compounds feeding id that must be priced:
// compounds without a producing step and compounds produced by a sourcing
// step. The caller must hold the mutex.
func (g *Graph) leavesOf(id string) []string {
	var leaves []string
	for c := range g.ancestors(id) {
		idx, produced := g.producers[c]
		if !produced || g.steps[idx].IsSourcing() {
			leaves = append(leaves, c)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Leaves returns the priced leaves feeding the target, sorted.
func (g *Graph) Leaves() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if g.target == "" {
		return nil
	}
	return g.leavesOf(g.target)
}
