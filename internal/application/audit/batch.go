// Package audit correlaciona los asientos del ledger producidos por una misma
// acción lógica de usuario bajo un identificador de lote compartido.
//
// El batch es un valor explícito que se pasa por parámetro a cada llamada de la
// operación externa, nunca estado global mutable: así no hay fuga de correlación
// entre requests concurrentes y el camino de mutación queda testeable.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Batch identifica un lote de auditoría. Valor efímero: no tiene fila propia,
// solo etiqueta asientos del ledger vía StockLedgerEntry.BatchID.
type Batch struct {
	ID        string
	StartedAt time.Time
}

// NewBatch abre un lote con un id de correlación fresco.
func NewBatch() Batch {
	return Batch{ID: uuid.New().String(), StartedAt: time.Now()}
}

// IsZero indica si el batch no fue inicializado (operación sin lote).
func (b Batch) IsZero() bool {
	return b.ID == ""
}
