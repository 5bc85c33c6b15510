package domain

// ProcessingResult is the outcome of handling one document position.
type ProcessingResult struct {
	Success        bool         `json:"success"`
	Message        string       `json:"message"`
	DocumentID     string       `json:"document_id,omitempty"`
	DocumentName   string       `json:"document_name,omitempty"`
	ProcessingID   string       `json:"processing_id,omitempty"`
	ProcessingName string       `json:"processing_name,omitempty"`
	Product        *ProductInfo `json:"product,omitempty"`
	Error          string       `json:"error,omitempty"`
}

// ProductInfo identifies the position's product and the stock level
// observed before any replenishment.
type ProductInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	StockBefore float64 `json:"stock_before"`
}
