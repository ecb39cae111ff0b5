package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// DeltaInput entrada de la primitiva ApplyDelta.
type DeltaInput struct {
	ProductID       string
	LocationID      string
	UserID          string
	Delta           int64
	ExpectedVersion *int64 // nil = sin guardia optimista (la fila se crea si no existe)
	LogType         string // entity.LogTypeAdjustment | entity.LogTypeTransfer
	Note            string
	BatchID         string
}

// ApplyDelta aplica un delta con signo sobre la caché de stock y escribe
// exactamente un asiento en el ledger, dentro de la transacción a la que están
// atados los repos. Esta primitiva no valida suficiencia de negocio (el
// resultado puede quedar negativo); esa política es del caller, que debe
// validar antes de invocarla.
//
// Si la fila no existe se crea con quantity = delta y version = 1. Si
// ExpectedVersion viene y no coincide con la versión almacenada, falla con
// domain.ErrVersionConflict sin mutar nada; el caller debe releer y reintentar,
// nunca se reintenta aquí.
func ApplyDelta(r Repos, in DeltaInput) (*entity.LocationStock, error) {
	if in.ProductID == "" || in.LocationID == "" || in.Delta == 0 {
		return nil, domain.ErrInvalidInput
	}

	updated, err := r.Stock.ApplyDelta(in.ProductID, in.LocationID, in.Delta, in.ExpectedVersion)
	if err != nil {
		return nil, err
	}

	entry := &entity.StockLedgerEntry{
		ID:         uuid.New().String(),
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		UserID:     in.UserID,
		Delta:      in.Delta,
		LogType:    in.LogType,
		Note:       in.Note,
		BatchID:    in.BatchID,
		CreatedAt:  time.Now(),
	}
	if err := r.Ledger.Create(entry); err != nil {
		return nil, err
	}
	return updated, nil
}

// Availability resultado del chequeo read-only de disponibilidad.
type Availability struct {
	IsValid         bool
	CurrentQuantity int64
	Shortfall       int64
}

// ValidateAvailability lee la cantidad actual y calcula el faltante frente a la
// cantidad requerida. Es un pre-chequeo de solo lectura: bajo el modelo
// optimista puede quedar obsoleto antes de la mutación, así que las operaciones
// mutantes deben revalidar dentro de su transacción o apoyarse en el conflicto
// de versión para fallar de forma segura.
func ValidateAvailability(stockRepo repository.LocationStockRepository, productID, locationID string, required int64) (*Availability, error) {
	current, err := stockRepo.Get(productID, locationID)
	if err != nil {
		return nil, err
	}
	var qty int64
	if current != nil {
		qty = current.Quantity
	}
	shortfall := required - qty
	if shortfall < 0 {
		shortfall = 0
	}
	return &Availability{
		IsValid:         shortfall == 0,
		CurrentQuantity: qty,
		Shortfall:       shortfall,
	}, nil
}
