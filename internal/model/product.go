package model

import (
	"encoding/json"
)

// UnlimitedStock is the ceiling used when the backend reports no stock
// figure for a product.
const UnlimitedStock = 1 << 30

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is a catalog entry as consumed by the storefront.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Stock       *int
	ImageURL    string
	CategoryID  string
}

// StockCeiling returns the maximum addable quantity for the product.
func (p *Product) StockCeiling() int {
	if p.Stock == nil {
		return UnlimitedStock
	}
	return *p.Stock
}

// flexID accepts a JSON string or number identifier.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// UnmarshalJSON resolves the upstream schema's dual identity fields.
// Some endpoints emit "id", others "_id"; the rest of the client only
// ever sees the canonical ID chosen here.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          *flexID `json:"id"`
		AltID       *flexID `json:"_id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       *int    `json:"stock_quantity"`
		ImageURL    string  `json:"image_url"`
		CategoryID  *flexID `json:"category_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.ID != nil && *raw.ID != "":
		p.ID = string(*raw.ID)
	case raw.AltID != nil:
		p.ID = string(*raw.AltID)
	}
	p.Name = raw.Name
	p.Description = raw.Description
	p.Price = raw.Price
	p.Stock = raw.Stock
	p.ImageURL = raw.ImageURL
	if raw.CategoryID != nil {
		p.CategoryID = string(*raw.CategoryID)
	}
	return nil
}

// MarshalJSON writes the canonical form only.
func (p Product) MarshalJSON() ([]byte, error) {
	type out struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description,omitempty"`
		Price       float64 `json:"price"`
		Stock       *int    `json:"stock_quantity,omitempty"`
		ImageURL    string  `json:"image_url,omitempty"`
		CategoryID  string  `json:"category_id,omitempty"`
	}
	return json.Marshal(out{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
	})
}
