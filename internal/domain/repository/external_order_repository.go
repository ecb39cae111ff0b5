package repository

import (
	"time"

	"github.com/jcastellr/bodega-api/internal/domain/entity"
)

// ExternalOrderRepository define el puerto de persistencia para órdenes externas
// ingresadas desde plataformas de e-commerce.
type ExternalOrderRepository interface {
	Create(order *entity.ExternalOrder) error
	CreateItem(item *entity.ExternalOrderItem) error
	GetByID(id string) (*entity.ExternalOrder, error)
	GetByExternalID(platform, externalID string) (*entity.ExternalOrder, error)
	ListItems(orderID string) ([]*entity.ExternalOrderItem, error)
	// IncrementItemFulfilledQty suma by al acumulado despachado, con la guardia
	// fulfilled_qty + by <= quantity aplicada en el mismo statement: cero filas
	// afectadas ⇒ domain.ErrVersionConflict (otro despachador concurrente ganó
	// la carrera; el invariante fulfilledQty <= quantity nunca se viola).
	// Devuelve la línea resultante.
	IncrementItemFulfilledQty(itemID string, by int64) (*entity.ExternalOrderItem, error)
	// SetItemProduct vincula la línea a un producto interno.
	SetItemProduct(itemID, productID string) error
	// UpdateStatus transiciona el estado de la orden y estampa el despacho si aplica.
	UpdateStatus(orderID, status string, fulfilledAt *time.Time, fulfilledBy string) error
	ListByStatus(status string, limit, offset int) ([]*entity.ExternalOrder, error)
}

// ProductLinkRepository define el puerto para los vínculos producto externo → interno.
type ProductLinkRepository interface {
	Create(link *entity.ProductLink) error
	// GetBySKU resuelve por SKU dentro de una plataforma.
	GetBySKU(platform, sku string) (*entity.ProductLink, error)
	// GetByExternalProduct resuelve por id de producto/variante de la plataforma.
	GetByExternalProduct(platform, externalProductID, externalVariantID string) (*entity.ProductLink, error)
}
