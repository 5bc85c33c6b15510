package domain

// TriggerDocument is the shape shared by the documents that can trigger
// replenishment: demands and customer orders.
type TriggerDocument struct {
	Meta         Meta          `json:"meta"`
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Moment       string        `json:"moment,omitempty"`
	Applicable   bool          `json:"applicable"`
	Store        *EntityRef    `json:"store,omitempty"`
	Organization *EntityRef    `json:"organization,omitempty"`
	Agent        *EntityRef    `json:"agent,omitempty"`
	Positions    *PositionList `json:"positions,omitempty"`
}

// PositionList holds the expanded document positions.
type PositionList struct {
	Meta Meta       `json:"meta"`
	Rows []LineItem `json:"rows"`
}

// LineItem is a single document position.
type LineItem struct {
	ID         string    `json:"id,omitempty"`
	Assortment EntityRef `json:"assortment"`
	Quantity   float64   `json:"quantity"`
	Reserve    float64   `json:"reserve,omitempty"`
}

// ProductID extracts the product ID from the position's assortment reference.
func (li LineItem) ProductID() string {
	return li.Assortment.EntityID()
}

// ProductName returns the assortment name, or "unknown" when the
// reference is not expanded.
func (li LineItem) ProductName() string {
	if li.Assortment.Name != "" {
		return li.Assortment.Name
	}
	return "unknown"
}
