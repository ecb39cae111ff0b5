package stock

import (
	"time"

	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre stock y ledger: nivel actual,
// disponibilidad, lista de reposición e historial. Sin obligaciones de
// invariantes para los callers (reporting/UI).
type QueryUseCase struct {
	stockRepo  repository.LocationStockRepository
	ledgerRepo repository.StockLedgerRepository
}

// NewQueryUseCase construye el caso de uso con repos atados al pool.
func NewQueryUseCase(stockRepo repository.LocationStockRepository, ledgerRepo repository.StockLedgerRepository) *QueryUseCase {
	return &QueryUseCase{stockRepo: stockRepo, ledgerRepo: ledgerRepo}
}

// GetLevel devuelve la fila de stock del par, o una fila vacía (cantidad 0,
// versión 0) si nunca hubo movimientos.
func (uc *QueryUseCase) GetLevel(productID, locationID string) (*entity.LocationStock, error) {
	if productID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	current, err := uc.stockRepo.Get(productID, locationID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &entity.LocationStock{ProductID: productID, LocationID: locationID}, nil
	}
	return current, nil
}

// ListByProduct devuelve el stock del producto en todas las ubicaciones.
func (uc *QueryUseCase) ListByProduct(productID string) ([]*entity.LocationStock, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.stockRepo.ListByProduct(productID)
}

// Availability ejecuta el pre-chequeo read-only de disponibilidad (puede
// quedar obsoleto: las operaciones mutantes revalidan por su cuenta).
func (uc *QueryUseCase) Availability(productID, locationID string, required int64) (*Availability, error) {
	if productID == "" || locationID == "" || required <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return ValidateAvailability(uc.stockRepo, productID, locationID, required)
}

// Replenishment lista las filas en o bajo su umbral de reposición,
// ordenadas por déficit. locationID vacío = todas las ubicaciones.
func (uc *QueryUseCase) Replenishment(locationID string, limit, offset int) ([]*entity.LocationStock, error) {
	return uc.stockRepo.ListBelowMin(locationID, limit, offset)
}

// SetMinQuantity fija el umbral de reposición del par.
func (uc *QueryUseCase) SetMinQuantity(productID, locationID string, minQuantity int64) error {
	if productID == "" || locationID == "" || minQuantity < 0 {
		return domain.ErrInvalidInput
	}
	return uc.stockRepo.SetMinQuantity(productID, locationID, minQuantity)
}

// LedgerHistory lista asientos del ledger de un par en un rango de fechas.
func (uc *QueryUseCase) LedgerHistory(productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockLedgerEntry, error) {
	if productID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.ledgerRepo.ListByProductAndLocation(productID, locationID, from, to, limit, offset)
}

// LedgerByBatch lista todos los asientos producidos por una misma acción
// (reconstrucción de los efectos de un lote de auditoría).
func (uc *QueryUseCase) LedgerByBatch(batchID string) ([]*entity.StockLedgerEntry, error) {
	if batchID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.ledgerRepo.ListByBatch(batchID)
}
