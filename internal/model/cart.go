package model

// CartLine is one product entry in the cart. Quantity is always positive;
// a line that would reach zero is removed rather than retained.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Stock     *int    `json:"stock_quantity,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// StockCeiling returns the maximum quantity for the line.
func (l *CartLine) StockCeiling() int {
	if l.Stock == nil {
		return UnlimitedStock
	}
	return *l.Stock
}

// CartTotals is derived from the line collection, never stored.
type CartTotals struct {
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}
