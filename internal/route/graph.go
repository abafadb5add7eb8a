package route

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Graph is a set of synthesis steps plus a designated target compound.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects every field below.
	mutex sync.RWMutex
	// steps keeps insertion order, which breaks ties in TopologicalOrder.
	steps []Step
	// producers maps a compound to the index of its producing step.
	producers map[string]int
	// raw holds compounds declared as raw materials.
	raw map[string]struct{}
	// target is the compound the route delivers.
	target string
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		producers: make(map[string]int),
		raw:       make(map[string]struct{}),
	}
}

// DeclareRawMaterial marks a compound as purchased. Only declared raw
// materials may have a step without inputs.
func (g *Graph) DeclareRawMaterial(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.raw[id] = struct{}{}
}

// IsDeclaredRaw reports whether the compound was declared a raw material.
func (g *Graph) IsDeclaredRaw(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.raw[id]
	return ok
}

// AddStep validates a step and adds it to the graph. The step is rejected
// if another step already produces its output, if it is malformed, or if it
// would close a dependency cycle.
func (g *Graph) AddStep(s Step) error {
	s = s.clone()

	g.mutex.Lock()
	defer g.mutex.Unlock()

	if err := g.checkStep(&s); err != nil {
		return err
	}
	if _, exists := g.producers[s.Output]; exists {
		return stepErr(s.Output, ErrDuplicateProducer, "compound is already produced by another step")
	}
	if chain := g.pathBack(s.Inputs, s.Output); chain != nil {
		return &CycleError{Chain: append([]string{s.Output}, chain...)}
	}

	g.producers[s.Output] = len(g.steps)
	g.steps = append(g.steps, s)
	return nil
}

// ReplaceStep swaps the producing step of s.Output for s. The replacement is
// validated like a new step.
func (g *Graph) ReplaceStep(s Step) error {
	s = s.clone()

	g.mutex.Lock()
	defer g.mutex.Unlock()

	idx, ok := g.producers[s.Output]
	if !ok {
		return stepErr(s.Output, ErrUnknownStep, "")
	}
	if err := g.checkStep(&s); err != nil {
		return err
	}

	// Take the old step out of the index while checking for cycles, so the
	// search does not walk through it.
	delete(g.producers, s.Output)
	chain := g.pathBack(s.Inputs, s.Output)
	g.producers[s.Output] = idx
	if chain != nil {
		return &CycleError{Chain: append([]string{s.Output}, chain...)}
	}

	g.steps[idx] = s
	return nil
}

// SetTarget designates the compound the route delivers.
func (g *Graph) SetTarget(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.target = id
}

// Target returns the designated target compound.
func (g *Graph) Target() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.target
}

// Producer returns the step producing a compound.
func (g *Graph) Producer(id string) (Step, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	idx, ok := g.producers[id]
	if !ok {
		return Step{}, false
	}
	return g.steps[idx].clone(), true
}

// Steps returns a copy of all steps in insertion order.
func (g *Graph) Steps() []Step {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := make([]Step, len(g.steps))
	for i, s := range g.steps {
		out[i] = s.clone()
	}
	return out
}

// Len returns the number of steps.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.steps)
}

// Compounds returns every compound referenced by the graph, sorted.
func (g *Graph) Compounds() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	seen := make(map[string]struct{})
	for _, s := range g.steps {
		seen[s.Output] = struct{}{}
		for _, in := range s.Inputs {
			seen[in.Compound] = struct{}{}
		}
	}
	if g.target != "" {
		seen[g.target] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	c := New()
	c.target = g.target
	for id := range g.raw {
		c.raw[id] = struct{}{}
	}
	for id, idx := range g.producers {
		c.producers[id] = idx
	}
	c.steps = make([]Step, len(g.steps))
	for i, s := range g.steps {
		c.steps[i] = s.clone()
	}
	return c
}

// checkStep normalises defaults and rejects malformed step definitions.
// The caller must hold the mutex.
func (g *Graph) checkStep(s *Step) error {
	if s.Output == "" {
		return stepErr(s.Output, ErrInvalidStep, "output compound must not be empty")
	}
	if math.IsNaN(s.Yield) || s.Yield <= 0 || s.Yield > 1 {
		return stepErr(s.Output, ErrInvalidYield, "yield %v is not in (0,1]", s.Yield)
	}
	if math.IsNaN(s.FixedCost) || math.IsInf(s.FixedCost, 0) || s.FixedCost < 0 {
		return stepErr(s.Output, ErrInvalidStep, "fixed cost %v must be a finite, non-negative number", s.FixedCost)
	}

	switch s.Basis {
	case "":
		s.Basis = BasisMass
	case BasisMass, BasisMolar:
	default:
		return stepErr(s.Output, ErrInvalidStep, "unknown basis %q", s.Basis)
	}

	if len(s.Inputs) == 0 {
		if _, ok := g.raw[s.Output]; !ok {
			return stepErr(s.Output, ErrEmptyInputs, "output is not a declared raw material")
		}
		return nil
	}

	seen := make(map[string]struct{}, len(s.Inputs))
	firstReagent := ""
	for i := range s.Inputs {
		in := &s.Inputs[i]
		if in.Compound == "" {
			return stepErr(s.Output, ErrInvalidStep, "input #%d has no compound", i+1)
		}
		if in.Compound == s.Output {
			return &CycleError{Chain: []string{s.Output, s.Output}}
		}
		if _, dup := seen[in.Compound]; dup {
			return stepErr(s.Output, ErrInvalidStep, "input %q listed twice", in.Compound)
		}
		seen[in.Compound] = struct{}{}

		switch in.Role {
		case "":
			in.Role = RoleReagent
		case RoleReagent, RoleCatalyst, RoleSolvent:
		default:
			return stepErr(s.Output, ErrInvalidStep, "input %q has unknown role %q", in.Compound, in.Role)
		}

		if in.IsSolvent() {
			continue
		}
		if firstReagent == "" {
			firstReagent = in.Compound
		}
		if math.IsNaN(in.Equivalents) || math.IsInf(in.Equivalents, 0) || in.Equivalents <= 0 {
			return stepErr(s.Output, ErrInvalidStep, "input %q: equivalents %v must be positive", in.Compound, in.Equivalents)
		}
	}

	for i := range s.Inputs {
		in := &s.Inputs[i]
		if !in.IsSolvent() {
			continue
		}
		if math.IsNaN(in.Volumes) || math.IsInf(in.Volumes, 0) || in.Volumes <= 0 {
			return stepErr(s.Output, ErrInvalidStep, "solvent %q: volumes %v must be positive", in.Compound, in.Volumes)
		}
		if math.IsNaN(in.Recycle) || in.Recycle < 0 || in.Recycle >= 1 {
			return stepErr(s.Output, ErrInvalidStep, "solvent %q: recycle fraction %v is not in [0,1)", in.Compound, in.Recycle)
		}
		if in.RelativeTo == "" {
			in.RelativeTo = firstReagent
		}
		rel, ok := s.Input(in.RelativeTo)
		if !ok || rel.IsSolvent() || in.RelativeTo == "" {
			return stepErr(s.Output, ErrInvalidStep, "solvent %q: volumes must be relative to a reagent of the same step, got %q", in.Compound, in.RelativeTo)
		}
	}
	return nil
}

// pathBack searches backwards from inputs through producing steps for the
// compound want. It returns the chain of compounds from the input that
// reaches want up to and including want, or nil. The caller must hold the
// mutex.
func (g *Graph) pathBack(inputs []Input, want string) []string {
	visited := make(map[string]bool)

	var walk func(id string) []string
	walk = func(id string) []string {
		if id == want {
			return []string{id}
		}
		if visited[id] {
			return nil
		}
		visited[id] = true

		idx, ok := g.producers[id]
		if !ok {
			return nil
		}
		for _, in := range g.steps[idx].Inputs {
			if rest := walk(in.Compound); rest != nil {
				return append([]string{id}, rest...)
			}
		}
		return nil
	}

	for _, in := range inputs {
		if chain := walk(in.Compound); chain != nil {
			return chain
		}
	}
	return nil
}

// String is used in debug logs.
func (g *Graph) String() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return fmt.Sprintf("route(target=%q, steps=%d)", g.target, len(g.steps))
}
