package dto

import "github.com/shopspring/decimal"

// NormalizedOrderLineItem línea de una orden ya normalizada por el adaptador
// de la plataforma (colaborador externo, firma ya verificada).
type NormalizedOrderLineItem struct {
	ExternalProductID string          `json:"external_product_id" validate:"required"`
	ExternalVariantID string          `json:"external_variant_id,omitempty"`
	SKU               string          `json:"sku,omitempty"`
	Quantity          int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// NormalizedOrderRequest body para POST /api/orders/ingest.
type NormalizedOrderRequest struct {
	Platform   string                    `json:"platform" validate:"required,max=50"`
	ExternalID string                    `json:"external_id" validate:"required,max=100"`
	Status     string                    `json:"status,omitempty"`
	Customer   string                    `json:"customer,omitempty" validate:"omitempty,max=200"`
	LineItems  []NormalizedOrderLineItem `json:"line_items" validate:"required,min=1,dive"`
}

// OrderItemResponse línea de orden en respuestas.
type OrderItemResponse struct {
	ID                string          `json:"id"`
	ExternalProductID string          `json:"external_product_id"`
	ExternalVariantID string          `json:"external_variant_id,omitempty"`
	SKU               string          `json:"sku,omitempty"`
	Quantity          int64           `json:"quantity"`
	FulfilledQty      int64           `json:"fulfilled_qty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	ProductID         string          `json:"product_id,omitempty"`
}

// OrderResponse orden externa con sus líneas.
type OrderResponse struct {
	ID          string              `json:"id"`
	Platform    string              `json:"platform"`
	ExternalID  string              `json:"external_id"`
	Status      string              `json:"status"`
	Customer    string              `json:"customer,omitempty"`
	FulfilledAt string              `json:"fulfilled_at,omitempty"`
	FulfilledBy string              `json:"fulfilled_by,omitempty"`
	Items       []OrderItemResponse `json:"items"`
}
