package costing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/routecost/internal/material"
	"github.com/vk/routecost/internal/route"
)

func TestApplyOverrides(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		override Override
		want     float64
	}{
		{"price", Override{Compound: "R", Field: FieldPrice, Value: 20}, 100},
		// I: 3*10/0.5 = 60, T: 60/0.8 = 75.
		{"equivalents", Override{Compound: "R", Field: FieldEquivalents, Value: 3}, 75},
		{"equivalents in named step", Override{Compound: "I", Field: FieldEquivalents, Value: 2, Step: "T"}, 100},
		{"yield", Override{Compound: "T", Field: FieldYield, Value: 1}, 40},
		// I: (20 + 5) / 0.5 = 50, T: 50/0.8 = 62.5.
		{"fixed cost", Override{Compound: "I", Field: FieldFixedCost, Value: 5}, 62.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := scenarioRoute(t)
			reg := prices(t, map[string]float64{"R": 10})

			og, oreg, err := ApplyOverrides(g, reg, tc.override)
			require.NoError(t, err)

			res, err := Calculate(ctx, og, oreg, "T", 1)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, res.UnitCost, tolerance)

			base, err := Calculate(ctx, g, reg, "T", 1)
			require.NoError(t, err)
			assert.InDelta(t, 50.0, base.UnitCost, tolerance, "the base route must be untouched")
		})
	}
}

func TestApplyOverrides_PriceOfProducedCompound(t *testing.T) {
	ctx := context.Background()
	g := scenarioRoute(t)
	reg := prices(t, map[string]float64{"R": 10})

	og, oreg, err := ApplyOverrides(g, reg, Override{Compound: "I", Field: FieldPrice, Value: 1})
	require.NoError(t, err)

	res, err := Calculate(ctx, og, oreg, "T", 10)
	require.NoError(t, err)
	// T: 1/0.8 = 1.25 per unit; R is no longer consumed.
	assert.InDelta(t, 1.25, res.UnitCost, tolerance)
	assert.InDelta(t, 12.5, res.TotalCost, tolerance)

	i, ok := res.Record("I")
	require.True(t, ok)
	assert.Equal(t, KindRaw, i.Kind)
	assert.InDelta(t, 12.5, i.Mass, tolerance)
	_, ok = res.Record("R")
	assert.False(t, ok, "compounds upstream of a bought intermediate are not costed")

	t.Run("target", func(t *testing.T) {
		og, oreg, err := ApplyOverrides(g, reg, Override{Compound: "T", Field: FieldPrice, Value: 7})
		require.NoError(t, err)
		res, err := Calculate(ctx, og, oreg, "T", 1)
		require.NoError(t, err)
		assert.InDelta(t, 7.0, res.UnitCost, tolerance)
	})

	t.Run("scan", func(t *testing.T) {
		scanner, err := NewScanner(g, reg, "T", 4)
		require.NoError(t, err)
		points, err := scanner.Scan(ctx, Override{Compound: "I", Field: FieldPrice}, []float64{8, 16})
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.InDelta(t, 10.0, points[0].UnitCost, tolerance)
		assert.InDelta(t, 20.0, points[1].UnitCost, tolerance)
	})

	base, err := Calculate(ctx, g, reg, "T", 1)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, base.UnitCost, tolerance, "the base route must be untouched")
}

func TestApplyOverrides_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		override Override
		wantErr  error
	}{
		{"yield of raw material", Override{Compound: "R", Field: FieldYield, Value: 0.5}, ErrInvalidOverride},
		{"equivalents of unknown input", Override{Compound: "Z", Field: FieldEquivalents, Value: 1}, ErrInvalidOverride},
		{"equivalents in wrong step", Override{Compound: "R", Field: FieldEquivalents, Value: 1, Step: "T"}, ErrInvalidOverride},
		{"unknown field", Override{Compound: "R", Field: "colour", Value: 1}, ErrInvalidOverride},
		{"yield out of range", Override{Compound: "T", Field: FieldYield, Value: 1.5}, route.ErrInvalidYield},
		{"negative price", Override{Compound: "R", Field: FieldPrice, Value: -1}, material.ErrInvalidPrice},
		{"negative price of intermediate", Override{Compound: "I", Field: FieldPrice, Value: -1}, material.ErrInvalidPrice},
		{"price of unknown compound", Override{Compound: "Typo", Field: FieldPrice, Value: 1}, ErrInvalidOverride},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, reg, err := ApplyOverrides(scenarioRoute(t), prices(t, map[string]float64{"R": 10}), tc.override)
			assert.Nil(t, g)
			assert.Nil(t, reg)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), tc.override.String())
		})
	}
}

func TestParseField(t *testing.T) {
	for _, s := range []string{"price", "equivalents", "yield", "fixed_cost"} {
		f, err := ParseField(s)
		require.NoError(t, err)
		assert.Equal(t, Field(s), f)
	}

	_, err := ParseField("mass")
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestOverride_String(t *testing.T) {
	assert.Equal(t, "R.price=12.5", Override{Compound: "R", Field: FieldPrice, Value: 12.5}.String())
	assert.Equal(t, "I[T].equivalents=2", Override{Compound: "I", Field: FieldEquivalents, Value: 2, Step: "T"}.String())
}

func TestParseOverride(t *testing.T) {
	testCases := []struct {
		in   string
		want Override
	}{
		{"R.price=12.5", Override{Compound: "R", Field: FieldPrice, Value: 12.5}},
		{"I[T].equivalents=2", Override{Compound: "I", Field: FieldEquivalents, Value: 2, Step: "T"}},
		{"2-chloro.pyridine.yield = 0.9", Override{Compound: "2-chloro.pyridine", Field: FieldYield, Value: 0.9}},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseOverride(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"R.price", "price=3", "R.mass=3", "R.price=abc", "[T].yield=1", "R[T.yield=1"} {
		_, err := ParseOverride(bad)
		assert.ErrorIs(t, err, ErrInvalidOverride, bad)
	}
}
