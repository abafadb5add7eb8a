// Package report turns a costing result into presentation rows and renders
// them as a terminal table, CSV or JSON. It never recomputes costs.
package report

import (
	"github.com/vk/routecost/internal/costing"
)

// Row is one compound line of a cost report.
type Row struct {
	Compound     string       `json:"compound"`
	Kind         costing.Kind `json:"kind"`
	Depth        int          `json:"depth"`
	Mass         float64      `json:"mass"`
	UnitCost     float64      `json:"unit_cost"`
	Contribution float64      `json:"contribution"`
	Share        float64      `json:"share,omitempty"`
}

// StepRow is one input line of a per-step breakdown. The fixed-cost line
// of a step has an empty Compound.
type StepRow struct {
	Step      string  `json:"step"`
	Compound  string  `json:"compound"`
	Role      string  `json:"role"`
	MassRatio float64 `json:"mass_ratio"`
	Cost      float64 `json:"cost"`
	Share     float64 `json:"share"`
}

// Report is the JSON document written by WriteJSON.
type Report struct {
	Target          string    `json:"target"`
	Quantity        float64   `json:"quantity"`
	UnitCost        float64   `json:"unit_cost"`
	TotalCost       float64   `json:"total_cost"`
	RawMaterialCost float64   `json:"raw_material_cost"`
	FixedCost       float64   `json:"fixed_cost"`
	Rows            []Row     `json:"rows"`
	Steps           []StepRow `json:"steps,omitempty"`
}

// Build returns one row per compound in the result, ordered by depth and
// then by compound name.
func Build(res *costing.Result) []Row {
	rows := make([]Row, 0, len(res.Records))
	for _, rec := range res.Records {
		rows = append(rows, Row{
			Compound:     rec.Compound,
			Kind:         rec.Kind,
			Depth:        rec.Depth,
			Mass:         rec.Mass,
			UnitCost:     rec.UnitCost,
			Contribution: rec.Contribution,
			Share:        rec.Share,
		})
	}
	return rows
}

// BuildSteps flattens the per-step breakdown of a result. Steps keep their
// topological order; each step lists its inputs followed by a fixed-cost
// line when the step has one.
func BuildSteps(res *costing.Result) []StepRow {
	var rows []StepRow
	for _, sc := range res.Steps {
		for _, in := range sc.Inputs {
			rows = append(rows, StepRow{
				Step:      sc.Output,
				Compound:  in.Compound,
				Role:      string(in.Role),
				MassRatio: in.MassRatio,
				Cost:      in.Cost,
				Share:     in.Share,
			})
		}
		if sc.FixedCost > 0 {
			rows = append(rows, StepRow{
				Step:  sc.Output,
				Role:  "fixed",
				Cost:  sc.FixedCost / sc.Yield,
				Share: sc.FixedShare,
			})
		}
	}
	return rows
}

// NewReport assembles the JSON document for a result.
func NewReport(res *costing.Result, withSteps bool) Report {
	r := Report{
		Target:          res.Target,
		Quantity:        res.Quantity,
		UnitCost:        res.UnitCost,
		TotalCost:       res.TotalCost,
		RawMaterialCost: res.RawMaterialCost,
		FixedCost:       res.FixedCost,
		Rows:            Build(res),
	}
	if withSteps {
		r.Steps = BuildSteps(res)
	}
	return r
}
