package costing

import "github.com/vk/routecost/internal/route"

// Kind classifies a compound within one costing run.
type Kind string

const (
	KindRaw          Kind = "raw"
	KindIntermediate Kind = "intermediate"
	KindTarget       Kind = "target"
)

// Record is the computed cost data for one compound.
type Record struct {
	Compound string
	Kind     Kind
	// Demand is the mass of the compound consumed per unit mass of target.
	Demand float64
	// Mass is Demand times the requested quantity.
	Mass float64
	// UnitCost is the cost per unit mass, rolled up from raw materials.
	UnitCost float64
	// Contribution is Mass times UnitCost. Breakdown only.
	Contribution float64
	// Share is the fraction of the target unit cost attributable to this
	// raw material. Zero for produced compounds.
	Share float64
	// Depth is the longest path, in steps, from the target.
	Depth int
}

// InputCost is one line of a step breakdown, per unit mass of step output.
type InputCost struct {
	Compound string
	Role     route.Role
	// MassRatio is input mass per unit output mass, yield included.
	MassRatio float64
	UnitCost  float64
	Cost      float64
	// Share is Cost as a fraction of the step's output unit cost.
	Share float64
}

// StepCost breaks down the unit cost of one step's output.
type StepCost struct {
	Output     string
	Yield      float64
	FixedCost  float64
	UnitCost   float64
	Inputs     []InputCost
	FixedShare float64
}

// Result is the outcome of a costing run.
type Result struct {
	Target   string
	Quantity float64
	// UnitCost is the cost per unit mass of target.
	UnitCost float64
	// TotalCost is UnitCost times Quantity.
	TotalCost float64
	// RawMaterialCost and FixedCost split UnitCost into what is paid for
	// materials and what is paid as step fixed costs.
	RawMaterialCost float64
	FixedCost       float64
	// Records lists every compound feeding the target, ordered by depth and
	// then by name.
	Records []Record
	// Steps lists the steps feeding the target in topological order.
	Steps []StepCost

	index map[string]int
}

// Record returns the record for a compound.
func (r *Result) Record(compound string) (Record, bool) {
	i, ok := r.index[compound]
	if !ok {
		return Record{}, false
	}
	return r.Records[i], true
}

// RawMaterials returns the raw-material records in result order.
func (r *Result) RawMaterials() []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.Kind == KindRaw {
			out = append(out, rec)
		}
	}
	return out
}
