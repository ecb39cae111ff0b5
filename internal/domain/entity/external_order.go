package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden externa. El estado nunca retrocede:
// pending → processing (algo se despachó) → fulfilled (todo despachado).
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusFulfilled  = "fulfilled"
)

// ExternalOrder es una orden ingresada desde una plataforma de e-commerce,
// ya verificada y normalizada por el adaptador de webhooks (colaborador externo).
type ExternalOrder struct {
	ID          string
	Platform    string // shopify, woocommerce, etc.
	ExternalID  string // id de la orden en la plataforma de origen
	Status      string
	Customer    string
	FulfilledAt *time.Time
	FulfilledBy string // UserID que completó el despacho
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExternalOrderItem es una línea de una orden externa. Invariante:
// FulfilledQty <= Quantity en todo momento; la línea está completamente
// despachada cuando son iguales.
type ExternalOrderItem struct {
	ID                string
	OrderID           string
	ExternalProductID string
	ExternalVariantID string
	SKU               string
	Quantity          int64 // cantidad ordenada
	FulfilledQty      int64 // acumulado ya deducido del stock
	UnitPrice         decimal.Decimal
	ProductID         string // vínculo a producto interno; vacío = sin mapear
}

// Remaining devuelve la cantidad pendiente de despachar.
func (i *ExternalOrderItem) Remaining() int64 {
	return i.Quantity - i.FulfilledQty
}

// FullyFulfilled indica si la línea ya fue despachada por completo.
func (i *ExternalOrderItem) FullyFulfilled() bool {
	return i.FulfilledQty >= i.Quantity
}

// IsMapped indica si la línea tiene un producto interno asociado.
func (i *ExternalOrderItem) IsMapped() bool {
	return i.ProductID != ""
}

// ProductLink asocia un identificador de producto externo (por plataforma/SKU)
// con un producto interno, para resolver líneas de órdenes ingresadas.
type ProductLink struct {
	ID                string
	Platform          string
	ExternalProductID string
	ExternalVariantID string
	SKU               string
	ProductID         string
	CreatedAt         time.Time
}
