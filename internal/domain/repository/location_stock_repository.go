package repository

import "github.com/jcastellr/bodega-api/internal/domain/entity"

// LocationStockRepository define el puerto para la caché materializada de stock
// por (producto, ubicación). La fila es propiedad exclusiva de las operaciones
// que escriben el ledger: Quantity y Version solo mutan vía ApplyDelta dentro de
// la misma transacción que el asiento correspondiente.
type LocationStockRepository interface {
	// Get devuelve la fila actual o nil si nunca hubo movimientos para el par.
	Get(productID, locationID string) (*entity.LocationStock, error)
	// ApplyDelta suma delta e incrementa la versión de forma atómica.
	// Sin expectedVersion la fila se crea si no existe (quantity = delta,
	// version = 1, upsert). Con expectedVersion la actualización es condicional
	// (compare-and-swap); cero filas afectadas ⇒ domain.ErrVersionConflict.
	// Devuelve la fila resultante.
	ApplyDelta(productID, locationID string, delta int64, expectedVersion *int64) (*entity.LocationStock, error)
	// ListByProduct devuelve el stock del producto en todas las ubicaciones.
	ListByProduct(productID string) ([]*entity.LocationStock, error)
	// ListBelowMin devuelve las filas en o bajo su umbral de reposición.
	// locationID vacío considera todas las ubicaciones.
	ListBelowMin(locationID string, limit, offset int) ([]*entity.LocationStock, error)
	// SetMinQuantity fija el umbral de reposición del par (upsert: crea la fila
	// con cantidad 0 si no existe, sin tocar ledger porque no muta cantidad).
	SetMinQuantity(productID, locationID string, minQuantity int64) error
}
