package dto

import "github.com/shopspring/decimal"

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name              string           `json:"name" validate:"required,max=200"`
	BaseName          string           `json:"base_name,omitempty" validate:"omitempty,max=200"`
	Variant           string           `json:"variant,omitempty" validate:"omitempty,max=100"`
	Size              *decimal.Decimal `json:"size,omitempty"`
	Unit              string           `json:"unit,omitempty" validate:"omitempty,max=20"`
	LowStockThreshold int64            `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	Cost              decimal.Decimal  `json:"cost"`
	Price             decimal.Decimal  `json:"price"`
}

// UpdateProductRequest body para PUT /api/products/:id. Solo metadatos: el
// stock se muta únicamente por las operaciones de stock.
type UpdateProductRequest struct {
	Name              string           `json:"name" validate:"required,max=200"`
	BaseName          string           `json:"base_name,omitempty" validate:"omitempty,max=200"`
	Variant           string           `json:"variant,omitempty" validate:"omitempty,max=100"`
	Size              *decimal.Decimal `json:"size,omitempty"`
	Unit              string           `json:"unit,omitempty" validate:"omitempty,max=20"`
	LowStockThreshold int64            `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	Cost              decimal.Decimal  `json:"cost"`
	Price             decimal.Decimal  `json:"price"`
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	BaseName          string           `json:"base_name,omitempty"`
	Variant           string           `json:"variant,omitempty"`
	Size              *decimal.Decimal `json:"size,omitempty"`
	Unit              string           `json:"unit,omitempty"`
	LowStockThreshold int64            `json:"low_stock_threshold"`
	Cost              decimal.Decimal  `json:"cost"`
	Price             decimal.Decimal  `json:"price"`
}

// CreateLocationRequest body para POST /api/locations.
type CreateLocationRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// LocationResponse ubicación en respuestas.
type LocationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
