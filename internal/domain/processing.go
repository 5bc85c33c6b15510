package domain

// Processing is a production operation converting materials into output
// per a tech card.
type Processing struct {
	Meta           Meta       `json:"meta"`
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Moment         string     `json:"moment,omitempty"`
	Applicable     *bool      `json:"applicable,omitempty"`
	ProcessingPlan *EntityRef `json:"processingPlan,omitempty"`
	Store          *EntityRef `json:"store,omitempty"`
	Organization   *EntityRef `json:"organization,omitempty"`
}

// CreateProcessingRequest is the body for creating a production operation.
// Both the material store and the output store point at the monitored
// warehouse.
type CreateProcessingRequest struct {
	ProcessingPlan MetaRef `json:"processingPlan"`
	Store          MetaRef `json:"store"`
	ProductsStore  MetaRef `json:"productsStore"`
	Organization   MetaRef `json:"organization"`
	Quantity       float64 `json:"quantity"`
	Description    string  `json:"description,omitempty"`
	ProcessingSum  float64 `json:"processingSum"`
}

// ApplyProcessingRequest confirms a production operation.
type ApplyProcessingRequest struct {
	Applicable bool `json:"applicable"`
}
