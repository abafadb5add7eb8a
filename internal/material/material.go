package material

// Material is a single catalog entry. Price is nil for compounds whose cost
// is derived from a synthesis step.
type Material struct {
	Name      string
	Price     *float64
	MolarMass float64 // g/mol, 0 when unknown
	Density   float64 // kg/L, 0 when unknown
	CAS       string
	Notes     string
}

// HasPrice reports whether the material carries a unit price.
func (m Material) HasPrice() bool {
	return m.Price != nil
}

// PriceOf is a small helper for building a Material with a price.
func PriceOf(v float64) *float64 {
	return &v
}
