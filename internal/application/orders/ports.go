package orders

import (
	"context"
	"time"

	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
type Repos struct {
	Orders repository.ExternalOrderRepository
	Links  repository.ProductLinkRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD: la orden y sus
// líneas se crean como una sola unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// IdempotencyStore deduplica entregas repetidas de webhooks. Reserve intenta
// registrar la clave y devuelve false si ya estaba registrada (entrega
// duplicada dentro del TTL).
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
