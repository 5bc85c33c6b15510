package domain

// Product is a product card with its custom fields.
type Product struct {
	Meta       Meta        `json:"meta"`
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Code       string      `json:"code,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// AttributeByName finds a custom field by its display name.
func (p Product) AttributeByName(name string) *Attribute {
	for i := range p.Attributes {
		if p.Attributes[i].Name == name {
			return &p.Attributes[i]
		}
	}
	return nil
}
