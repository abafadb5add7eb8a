package config

// Model is the unified, format-agnostic representation of a set of route
// definition files: a material catalog, synthesis steps and named routes.
type Model struct {
	Materials []*Material
	Steps     []*Step
	Routes    []*Route
}

// Material is the format-agnostic representation of a `material` block.
type Material struct {
	Name      string
	Price     *float64
	MolarMass float64
	Density   float64
	CAS       string
	Notes     string
	// Raw marks the material as purchasable even when a sourcing step
	// produces it.
	Raw bool
}

// Step is the format-agnostic representation of a `step` block.
type Step struct {
	Output    string
	Yield     float64
	FixedCost float64
	Basis     string
	Inputs    []*Input
}

// Input is one `input` block nested in a step.
type Input struct {
	Compound    string
	Role        string
	Equivalents float64
	Volumes     float64
	RelativeTo  string
	Recycle     float64
}

// Route is the format-agnostic representation of a `route` block: a named
// target with a default quantity.
type Route struct {
	Name     string
	Target   string
	Quantity float64
}
