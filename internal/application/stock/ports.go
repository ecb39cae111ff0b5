package stock

import (
	"context"

	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
type Repos struct {
	Stock  repository.LocationStockRepository
	Ledger repository.StockLedgerRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la mutación de la caché de stock
// y el asiento del ledger se confirmen como una sola unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
