package fulfillment

import (
	"context"

	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
type Repos struct {
	Orders repository.ExternalOrderRepository
	Stock  repository.LocationStockRepository
	Ledger repository.StockLedgerRepository
}

// SavepointRunner ejecuta fn dentro de un savepoint anidado en la transacción
// exterior: si fn falla solo se revierte lo escrito por fn, las líneas ya
// confirmadas dentro de la misma llamada sobreviven.
type SavepointRunner func(fn func(r Repos) error) error

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx y un runner de savepoints para aislar el trabajo
// por línea.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos, savepoint SavepointRunner) error) error
}
