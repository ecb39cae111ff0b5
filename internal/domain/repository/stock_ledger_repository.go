package repository

import (
	"time"

	"github.com/jcastellr/bodega-api/internal/domain/entity"
)

// StockLedgerRepository define el puerto para el ledger de stock (append-only).
// Los asientos nunca se actualizan ni se borran.
type StockLedgerRepository interface {
	Create(entry *entity.StockLedgerEntry) error
	ListByProductAndLocation(productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockLedgerEntry, error)
	ListByBatch(batchID string) ([]*entity.StockLedgerEntry, error)
	// SumDeltas suma todos los deltas del par; usado para verificar consistencia
	// ledger/caché en reportes y reconciliación.
	SumDeltas(productID, locationID string) (int64, error)
}
