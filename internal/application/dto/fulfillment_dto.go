package dto

// ValidateFulfillmentRequest query para GET /api/orders/:id/fulfillment/validate.
// LocationID vacío = evaluar todas las ubicaciones y sugerir la de mejor cobertura.
type ValidateFulfillmentRequest struct {
	LocationID string `query:"location_id" validate:"omitempty,uuid4"`
}

// FulfillmentIssue problema detectado en una línea durante la validación.
type FulfillmentIssue struct {
	ItemID          string `json:"item_id"`
	Reason          string `json:"reason"` // unmapped | insufficient_stock | already_fulfilled
	Remaining       int64  `json:"remaining"`
	CurrentQuantity int64  `json:"current_quantity,omitempty"`
	Shortfall       int64  `json:"shortfall,omitempty"`
}

// ValidateFulfillmentResponse resultado de la fase de validación (read-only).
type ValidateFulfillmentResponse struct {
	OrderID             string             `json:"order_id"`
	CanFulfill          bool               `json:"can_fulfill"`
	RequiresAttention   bool               `json:"requires_attention"`
	Issues              []FulfillmentIssue `json:"issues"`
	SuggestedLocationID string             `json:"suggested_location_id,omitempty"`
	SuggestedCoverage   int                `json:"suggested_coverage,omitempty"` // líneas satisfacibles por completo allí
}

// FulfillLineRequest una línea a despachar.
type FulfillLineRequest struct {
	ItemID    string `json:"item_id" validate:"required,uuid4"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
	ProductID string `json:"product_id,omitempty" validate:"omitempty,uuid4"` // override del mapeo de la línea
}

// FulfillOrderRequest body para POST /api/orders/:id/fulfillment.
type FulfillOrderRequest struct {
	LocationID string               `json:"location_id" validate:"required,uuid4"`
	Lines      []FulfillLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes      string               `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// FulfilledLineResponse línea despachada con éxito.
type FulfilledLineResponse struct {
	ItemID       string `json:"item_id"`
	ProductID    string `json:"product_id"`
	Quantity     int64  `json:"quantity"` // cantidad efectivamente deducida (post-clamp)
	FulfilledQty int64  `json:"fulfilled_qty"`
}

// SkippedLineResponse línea omitida con su razón.
type SkippedLineResponse struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"` // already_fulfilled | unmapped | insufficient_stock
}

// FailedLineResponse línea que falló por un error inesperado (distinto de skip).
type FailedLineResponse struct {
	ItemID string `json:"item_id"`
	Error  string `json:"error"`
}

// FulfillOrderResponse resultado por línea + estado final de la orden.
type FulfillOrderResponse struct {
	OrderID     string                  `json:"order_id"`
	OrderStatus string                  `json:"order_status"`
	BatchID     string                  `json:"batch_id"`
	Fulfilled   []FulfilledLineResponse `json:"fulfilled"`
	Skipped     []SkippedLineResponse   `json:"skipped"`
	Failed      []FailedLineResponse    `json:"failed"`
}
