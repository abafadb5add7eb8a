package hcl_adapter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/routecost/internal/config"
	"github.com/vk/routecost/internal/testutil"
)

func ptr(v float64) *float64 { return &v }

func TestLoader_Load(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"materials.hcl": `
			material "R" {
				price      = 10
				molar_mass = 120.5
				cas        = "50-00-0"
			}
			material "THF" {
				price   = 4
				density = 0.89
			}
			material "T" {
				notes = "final product"
			}
		`,
		"route/steps.hcl": `
			step "I" {
				yield = 0.5
				input "R" {
					equivalents = 2
				}
				input "THF" {
					role        = "solvent"
					volumes     = 10
					relative_to = "R"
					recycle     = 0.8
				}
			}

			step "T" {
				yield      = 0.8
				fixed_cost = 2.5
				basis      = "mass"
				input "I" {
					equivalents = 1
				}
			}

			route "main" {
				target   = "T"
				quantity = 10
			}
		`,
		"README.md": "not a route file",
	})

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	want := &config.Model{
		Materials: []*config.Material{
			{Name: "R", Price: ptr(10), MolarMass: 120.5, CAS: "50-00-0"},
			{Name: "THF", Price: ptr(4), Density: 0.89},
			{Name: "T", Notes: "final product"},
		},
		Steps: []*config.Step{
			{Output: "I", Yield: 0.5, Inputs: []*config.Input{
				{Compound: "R", Equivalents: 2},
				{Compound: "THF", Role: "solvent", Volumes: 10, RelativeTo: "R", Recycle: 0.8},
			}},
			{Output: "T", Yield: 0.8, FixedCost: 2.5, Basis: "mass", Inputs: []*config.Input{
				{Compound: "I", Equivalents: 1},
			}},
		},
		Routes: []*config.Route{{Name: "main", Target: "T", Quantity: 10}},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_MaterialReferences(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"main.hcl": `
			material "SM" {
				price      = 20
				molar_mass = 100
			}
			material "P" {
				molar_mass = 125
			}
			step "P" {
				yield = 0.9
				input "SM" {
					equivalents = materials.P.molar_mass / materials.SM.molar_mass
				}
			}
			route "p" {
				target = "P"
			}
		`,
	})

	model, err := NewLoader().Load(context.Background(), filepath.Join(dir, "main.hcl"))
	require.NoError(t, err)
	require.Len(t, model.Steps, 1)
	assert.InDelta(t, 1.25, model.Steps[0].Inputs[0].Equivalents, 1e-12)
	assert.Equal(t, 1.0, model.Routes[0].Quantity, "quantity defaults to one unit")
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		hcl     string
		wantErr string
	}{
		{
			name:    "syntax error",
			hcl:     `step "I" {`,
			wantErr: "failed to parse",
		},
		{
			name:    "unknown block",
			hcl:     `reactor "X" {}`,
			wantErr: "failed to decode",
		},
		{
			name:    "missing yield",
			hcl:     `step "I" { input "R" { equivalents = 1 } }`,
			wantErr: "failed to decode",
		},
		{
			name:    "non-numeric attribute",
			hcl:     `step "I" { yield = "high" }`,
			wantErr: "'yield'",
		},
		{
			name:    "unknown material reference",
			hcl:     `step "I" { yield = materials.X.price }`,
			wantErr: "invalid value for 'yield'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := testutil.WriteFiles(t, map[string]string{"main.hcl": tc.hcl})
			_, err := NewLoader().Load(context.Background(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_NoFiles(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "no .hcl route files")
}
