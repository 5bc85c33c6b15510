package domain

// ProcessingPlan is a tech card: the bill of materials for producing
// one unit of an output product.
type ProcessingPlan struct {
	Meta      Meta      `json:"meta"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Materials *PlanRows `json:"materials,omitempty"`
	Products  *PlanRows `json:"products,omitempty"`
}

// PlanRows holds the expanded material or product rows of a tech card.
type PlanRows struct {
	Meta Meta      `json:"meta"`
	Rows []PlanRow `json:"rows,omitempty"`
}

// PlanRow is one material or product line of a tech card. Quantity is
// per unit of output.
type PlanRow struct {
	ID         string    `json:"id,omitempty"`
	Product    EntityRef `json:"product"`
	Assortment EntityRef `json:"assortment"`
	Quantity   float64   `json:"quantity"`
}

// MaterialRows returns the expanded material rows, or nil when the
// materials block was not expanded.
func (p ProcessingPlan) MaterialRows() []PlanRow {
	if p.Materials == nil {
		return nil
	}
	return p.Materials.Rows
}
