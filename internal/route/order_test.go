package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outputs(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Output
	}
	return out
}

func TestTopologicalOrder(t *testing.T) {
	t.Run("producers precede consumers", func(t *testing.T) {
		g := New()
		// Added consumer-first on purpose.
		require.NoError(t, g.AddStep(Step{Output: "T", Inputs: []Input{reagent("I", 1)}, Yield: 1}))
		require.NoError(t, g.AddStep(Step{Output: "I", Inputs: []Input{reagent("R", 1)}, Yield: 1}))

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"I", "T"}, outputs(order))
	})

	t.Run("ties broken by insertion order", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddStep(Step{Output: "T", Inputs: []Input{reagent("C", 1), reagent("B", 1), reagent("A", 1)}, Yield: 1}))
		require.NoError(t, g.AddStep(Step{Output: "C", Inputs: []Input{reagent("R", 1)}, Yield: 1}))
		require.NoError(t, g.AddStep(Step{Output: "A", Inputs: []Input{reagent("R", 1)}, Yield: 1}))
		require.NoError(t, g.AddStep(Step{Output: "B", Inputs: []Input{reagent("A", 1)}, Yield: 1}))

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A", "B", "T"}, outputs(order))
	})

	t.Run("restartable and deterministic", func(t *testing.T) {
		g := convergent(t)
		first, err := g.TopologicalOrder()
		require.NoError(t, err)
		for range 10 {
			again, err := g.TopologicalOrder()
			require.NoError(t, err)
			assert.Equal(t, outputs(first), outputs(again))
		}
		assert.Equal(t, []string{"A", "B", "T", "Unused"}, outputs(first))
	})
}

func TestAncestors(t *testing.T) {
	g := convergent(t)
	assert.Equal(t, []string{"A", "B", "R1", "R2", "T", "X"}, g.Ancestors("T"))
	assert.Equal(t, []string{"R1", "R2", "X"}, g.Leaves())
	assert.Equal(t, []string{"R"}, New().Ancestors("R"))
}
