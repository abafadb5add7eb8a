package route

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type priceMap map[string]float64

func (p priceMap) Lookup(id string) (float64, error) {
	v, ok := p[id]
	if !ok {
		return 0, errors.New("not found")
	}
	return v, nil
}

func convergent(t *testing.T) *Graph {
	t.Helper()
	g := New()
	g.SetTarget("T")
	require.NoError(t, g.AddStep(Step{Output: "A", Inputs: []Input{reagent("X", 1), reagent("R1", 1)}, Yield: 0.8}))
	require.NoError(t, g.AddStep(Step{Output: "B", Inputs: []Input{reagent("X", 2), reagent("R2", 1)}, Yield: 0.5}))
	require.NoError(t, g.AddStep(Step{Output: "T", Inputs: []Input{reagent("A", 1), reagent("B", 1)}, Yield: 0.9}))
	require.NoError(t, g.AddStep(Step{Output: "Unused", Inputs: []Input{reagent("Q", 1)}, Yield: 0.9}))
	return g
}

func TestValidate(t *testing.T) {
	t.Run("requires a target", func(t *testing.T) {
		assert.ErrorIs(t, New().Validate(nil), ErrNoTarget)
	})

	t.Run("all leaves priced", func(t *testing.T) {
		g := convergent(t)
		assert.NoError(t, g.Validate(priceMap{"X": 1, "R1": 1, "R2": 1}))
	})

	t.Run("reports every unresolved raw material", func(t *testing.T) {
		g := convergent(t)
		err := g.Validate(priceMap{"R1": 1})
		require.ErrorIs(t, err, ErrUnresolvedRawMaterial)

		errs := multierr.Errors(err)
		require.Len(t, errs, 2)
		var ue *UnresolvedError
		require.True(t, errors.As(errs[0], &ue))
		assert.Equal(t, "R2", ue.Compound)
		require.True(t, errors.As(errs[1], &ue))
		assert.Equal(t, "X", ue.Compound)
	})

	t.Run("steps not feeding the target are not price checked", func(t *testing.T) {
		g := convergent(t)
		assert.NoError(t, g.Validate(priceMap{"X": 1, "R1": 1, "R2": 1}))
		assert.NotContains(t, g.Leaves(), "Q")
	})

	t.Run("sourcing steps need a price", func(t *testing.T) {
		g := New()
		g.SetTarget("T")
		g.DeclareRawMaterial("R")
		require.NoError(t, g.AddStep(Step{Output: "R", Yield: 0.9}))
		require.NoError(t, g.AddStep(Step{Output: "T", Inputs: []Input{reagent("R", 1)}, Yield: 1}))
		assert.ErrorIs(t, g.Validate(priceMap{}), ErrUnresolvedRawMaterial)
		assert.NoError(t, g.Validate(priceMap{"R": 3}))
	})

	t.Run("target that is a raw material", func(t *testing.T) {
		g := New()
		g.SetTarget("R")
		assert.ErrorIs(t, g.Validate(priceMap{}), ErrUnresolvedRawMaterial)
		assert.NoError(t, g.Validate(priceMap{"R": 1}))
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		assert.NoError(t, New().DetectCycles())
	})

	t.Run("cycle injected behind the constructor is detected", func(t *testing.T) {
		// AddStep refuses cycles, so build the broken state by hand.
		g := New()
		g.steps = []Step{
			{Output: "C2", Inputs: []Input{reagent("C1", 1)}, Yield: 1},
			{Output: "C1", Inputs: []Input{reagent("C2", 1)}, Yield: 1},
		}
		g.producers = map[string]int{"C2": 0, "C1": 1}
		g.target = "C2"

		err := g.Validate(nil)
		var ce *CycleError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, []string{"C2", "C1", "C2"}, ce.Chain)

		_, err = g.TopologicalOrder()
		assert.ErrorIs(t, err, ErrCycleDetected)
	})
}
