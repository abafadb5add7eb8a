package route

import (
	"slices"
	"sort"
)

// TopologicalOrder returns the steps ordered so that every step appears after
// the steps producing its inputs. Ties are broken by insertion order, so the
// result is reproducible. Each call recomputes the order from scratch.
func (g *Graph) TopologicalOrder() ([]Step, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	idxs, err := g.topoIndexes()
	if err != nil {
		return nil, err
	}
	out := make([]Step, len(idxs))
	for i, idx := range idxs {
		out[i] = g.steps[idx].clone()
	}
	return out, nil
}

// topoIndexes is Kahn's algorithm over step indexes with a ready list kept
// sorted by insertion index. The caller must hold the mutex.
func (g *Graph) topoIndexes() ([]int, error) {
	n := len(g.steps)
	indegree := make([]int, n)
	dependents := make([][]int, n)

	for i, s := range g.steps {
		for _, in := range s.Inputs {
			if p, ok := g.producers[in.Compound]; ok {
				indegree[i]++
				dependents[p] = append(dependents[p], i)
			}
		}
	}

	var ready []int
	for i := range n {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, d := range dependents[next] {
			indegree[d]--
			if indegree[d] == 0 {
				pos, _ := slices.BinarySearch(ready, d)
				ready = slices.Insert(ready, pos, d)
			}
		}
	}

	if len(order) != n {
		if err := g.detectCycles(); err != nil {
			return nil, err
		}
		return nil, &CycleError{}
	}
	return order, nil
}

// Ancestors returns id and every compound it is transitively made from,
// sorted.
func (g *Graph) Ancestors(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	set := g.ancestors(id)
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ancestors collects id and its transitive inputs. The caller must hold the
// mutex.
func (g *Graph) ancestors(id string) map[string]struct{} {
	seen := map[string]struct{}{id: {}}
	queue := []string{id}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		idx, ok := g.producers[c]
		if !ok {
			continue
		}
		for _, in := range g.steps[idx].Inputs {
			if _, done := seen[in.Compound]; !done {
				seen[in.Compound] = struct{}{}
				queue = append(queue, in.Compound)
			}
		}
	}
	return seen
}
