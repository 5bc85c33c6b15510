package domain

// StockLine is one assortment row in the stock-by-store report. The row
// meta href identifies the assortment; per-store balances are nested.
type StockLine struct {
	Meta         Meta         `json:"meta"`
	StockByStore []StoreStock `json:"stockByStore,omitempty"`
}

// StoreStock is the balance of one assortment on one store.
type StoreStock struct {
	Meta      Meta    `json:"meta"`
	Name      string  `json:"name,omitempty"`
	Stock     float64 `json:"stock"`
	Reserve   float64 `json:"reserve"`
	InTransit float64 `json:"inTransit"`
}

// Available is the sellable balance: physical stock minus reservations.
func (s StoreStock) Available() float64 {
	return s.Stock - s.Reserve
}
