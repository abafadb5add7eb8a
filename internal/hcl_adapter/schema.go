package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Anything else in a file is a decode error.
type fileRoot struct {
	Materials []*Material `hcl:"material,block"`
	Steps     []*Step     `hcl:"step,block"`
	Routes    []*Route    `hcl:"route,block"`
}

// Material is the HCL schema of a `material "<name>" { ... }` block.
// Numeric attributes are literals; they are evaluated before any step so
// that steps can refer to them.
type Material struct {
	Name      string         `hcl:"name,label"`
	Price     hcl.Expression `hcl:"price,optional"`
	MolarMass hcl.Expression `hcl:"molar_mass,optional"`
	Density   hcl.Expression `hcl:"density,optional"`
	CAS       string         `hcl:"cas,optional"`
	Notes     string         `hcl:"notes,optional"`
	Raw       bool           `hcl:"raw,optional"`
}

// Step is the HCL schema of a `step "<output>" { ... }` block.
type Step struct {
	Output    string         `hcl:"output,label"`
	Yield     hcl.Expression `hcl:"yield"`
	FixedCost hcl.Expression `hcl:"fixed_cost,optional"`
	Basis     string         `hcl:"basis,optional"`
	Inputs    []*Input       `hcl:"input,block"`
}

// Input is the HCL schema of an `input "<compound>" { ... }` block.
type Input struct {
	Compound    string         `hcl:"compound,label"`
	Role        string         `hcl:"role,optional"`
	Equivalents hcl.Expression `hcl:"equivalents,optional"`
	Volumes     hcl.Expression `hcl:"volumes,optional"`
	RelativeTo  string         `hcl:"relative_to,optional"`
	Recycle     hcl.Expression `hcl:"recycle,optional"`
}

// Route is the HCL schema of a `route "<name>" { ... }` block.
type Route struct {
	Name     string         `hcl:"name,label"`
	Target   string         `hcl:"target"`
	Quantity hcl.Expression `hcl:"quantity,optional"`
}
