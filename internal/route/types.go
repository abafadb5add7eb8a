package route

// Role describes how an input participates in a step.
type Role string

const (
	// RoleReagent is a stoichiometric input. Equivalents apply.
	RoleReagent Role = "reagent"
	// RoleCatalyst is costed exactly like a reagent; the role is informational.
	RoleCatalyst Role = "catalyst"
	// RoleSolvent is charged by volume relative to another input of the step.
	RoleSolvent Role = "solvent"
)

// Basis selects how reagent equivalents are interpreted.
type Basis string

const (
	// BasisMass treats equivalents as mass of input per mass of output.
	BasisMass Basis = "mass"
	// BasisMolar treats equivalents as moles of input per mole of output;
	// molar masses of the inputs and the output are required.
	BasisMolar Basis = "molar"
)

// Input is one compound consumed by a step.
type Input struct {
	Compound    string
	Equivalents float64
	Role        Role

	// Solvent charge: Volumes litres per kg of the RelativeTo input, of which
	// the Recycle fraction is recovered and not charged.
	Volumes    float64
	RelativeTo string
	Recycle    float64
}

// IsSolvent reports whether the input is charged by volume.
func (in Input) IsSolvent() bool {
	return in.Role == RoleSolvent
}

// Step is a single reaction producing Output from Inputs.
type Step struct {
	Output    string
	Inputs    []Input
	Yield     float64
	FixedCost float64
	Basis     Basis
}

// IsSourcing reports whether the step has no inputs. Such steps exist only
// for declared raw materials and model purchase overhead and handling loss.
func (s Step) IsSourcing() bool {
	return len(s.Inputs) == 0
}

// Input returns the input entry for a compound.
func (s Step) Input(compound string) (Input, bool) {
	for _, in := range s.Inputs {
		if in.Compound == compound {
			return in, true
		}
	}
	return Input{}, false
}

func (s Step) clone() Step {
	c := s
	c.Inputs = append([]Input(nil), s.Inputs...)
	return c
}
