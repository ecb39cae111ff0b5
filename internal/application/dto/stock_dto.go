package dto

// AdjustStockRequest body para POST /api/stock/adjustments.
// Delta con signo: positivo entrada, negativo salida/corrección.
type AdjustStockRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid4"`
	LocationID      string `json:"location_id" validate:"required,uuid4"`
	Delta           int64  `json:"delta" validate:"required"`
	Note            string `json:"note,omitempty" validate:"omitempty,max=500"`
	AllowNegative   bool   `json:"allow_negative,omitempty"`
	ExpectedVersion *int64 `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

// TransferStockRequest body para POST /api/stock/transfers.
type TransferStockRequest struct {
	ProductID           string `json:"product_id" validate:"required,uuid4"`
	FromLocationID      string `json:"from_location_id" validate:"required,uuid4"`
	ToLocationID        string `json:"to_location_id" validate:"required,uuid4"`
	Quantity            int64  `json:"quantity" validate:"required,min=1"`
	ExpectedFromVersion *int64 `json:"expected_from_version,omitempty" validate:"omitempty,min=1"`
	Note                string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// BatchTransferSource una línea de origen del traslado por lotes.
type BatchTransferSource struct {
	FromLocationID  string `json:"from_location_id" validate:"required,uuid4"`
	Quantity        int64  `json:"quantity" validate:"required,min=1"`
	ExpectedVersion *int64 `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

// BatchTransferRequest body para POST /api/stock/batch-transfers ("stock in"
// desde N orígenes hacia un destino).
type BatchTransferRequest struct {
	ProductID    string                `json:"product_id" validate:"required,uuid4"`
	ToLocationID string                `json:"to_location_id" validate:"required,uuid4"`
	Sources      []BatchTransferSource `json:"sources" validate:"required,min=1,dive"`
}

// StockLevelResponse nivel actual de un par (producto, ubicación).
type StockLevelResponse struct {
	ProductID   string `json:"product_id"`
	LocationID  string `json:"location_id"`
	Quantity    int64  `json:"quantity"`
	MinQuantity int64  `json:"min_quantity"`
	Version     int64  `json:"version"`
}

// AdjustStockResponse resultado de un ajuste aplicado.
type AdjustStockResponse struct {
	ProductID   string `json:"product_id"`
	LocationID  string `json:"location_id"`
	NewQuantity int64  `json:"new_quantity"`
	NewVersion  int64  `json:"new_version"`
	BatchID     string `json:"batch_id,omitempty"`
}

// TransferStockResponse resultado de un traslado exitoso.
type TransferStockResponse struct {
	ProductID    string `json:"product_id"`
	FromQuantity int64  `json:"from_quantity"`
	FromVersion  int64  `json:"from_version"`
	ToQuantity   int64  `json:"to_quantity"`
	ToVersion    int64  `json:"to_version"`
	BatchID      string `json:"batch_id"`
}

// BatchTransferLineResult resultado por origen del traslado por lotes.
type BatchTransferLineResult struct {
	FromLocationID string `json:"from_location_id"`
	Quantity       int64  `json:"quantity"`
	Succeeded      bool   `json:"succeeded"`
	ErrorCode      string `json:"error_code,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// BatchTransferResponse resultado agregado del traslado por lotes.
// Status: "ok" si todas las líneas pasaron, "partial" si solo algunas.
type BatchTransferResponse struct {
	Status           string                    `json:"status"`
	TotalTransferred int64                     `json:"total_transferred"`
	BatchID          string                    `json:"batch_id"`
	Lines            []BatchTransferLineResult `json:"lines"`
}

// SourceShortfall detalle por origen cuando la pre-validación del lote falla.
type SourceShortfall struct {
	FromLocationID  string `json:"from_location_id"`
	Requested       int64  `json:"requested"`
	CurrentQuantity int64  `json:"current_quantity"`
	Shortfall       int64  `json:"shortfall"`
}

// AvailabilityResponse resultado del chequeo read-only de disponibilidad.
type AvailabilityResponse struct {
	IsValid         bool  `json:"is_valid"`
	CurrentQuantity int64 `json:"current_quantity"`
	Shortfall       int64 `json:"shortfall"`
}

// ReplenishmentItemResponse fila en o bajo su umbral de reposición.
type ReplenishmentItemResponse struct {
	ProductID   string `json:"product_id"`
	LocationID  string `json:"location_id"`
	Quantity    int64  `json:"quantity"`
	MinQuantity int64  `json:"min_quantity"`
	Deficit     int64  `json:"deficit"` // MinQuantity - Quantity
}

// SetMinQuantityRequest body para PUT /api/stock/min-quantity.
type SetMinQuantityRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid4"`
	LocationID  string `json:"location_id" validate:"required,uuid4"`
	MinQuantity int64  `json:"min_quantity" validate:"min=0"`
}

// LedgerEntryResponse asiento del ledger en respuestas de historial.
type LedgerEntryResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	UserID     string `json:"user_id"`
	Delta      int64  `json:"delta"`
	LogType    string `json:"log_type"`
	Note       string `json:"note,omitempty"`
	BatchID    string `json:"batch_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}
