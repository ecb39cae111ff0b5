package orders_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jcastellr/bodega-api/internal/application/orders"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con la semántica del adaptador PostgreSQL: ausencia es
// domain.ErrNotFound, duplicado por (plataforma, id externo) es ErrDuplicate.
// ──────────────────────────────────────────────────────────────────────────────

type memOrderRepo struct {
	orders map[string]*entity.ExternalOrder
	items  map[string]*entity.ExternalOrderItem
}

var _ repository.ExternalOrderRepository = (*memOrderRepo)(nil)

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: make(map[string]*entity.ExternalOrder),
		items:  make(map[string]*entity.ExternalOrderItem),
	}
}

func (m *memOrderRepo) Create(order *entity.ExternalOrder) error {
	for _, existing := range m.orders {
		if existing.Platform == order.Platform && existing.ExternalID == order.ExternalID {
			return domain.ErrDuplicate
		}
	}
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memOrderRepo) CreateItem(item *entity.ExternalOrderItem) error {
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *memOrderRepo) GetByID(id string) (*entity.ExternalOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *memOrderRepo) GetByExternalID(platform, externalID string) (*entity.ExternalOrder, error) {
	for _, order := range m.orders {
		if order.Platform == platform && order.ExternalID == externalID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memOrderRepo) ListItems(orderID string) ([]*entity.ExternalOrderItem, error) {
	var out []*entity.ExternalOrderItem
	for _, item := range m.items {
		if item.OrderID == orderID {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memOrderRepo) IncrementItemFulfilledQty(itemID string, by int64) (*entity.ExternalOrderItem, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if item.FulfilledQty+by > item.Quantity {
		return nil, domain.ErrVersionConflict
	}
	item.FulfilledQty += by
	copied := *item
	return &copied, nil
}

func (m *memOrderRepo) SetItemProduct(itemID, productID string) error {
	item, ok := m.items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	item.ProductID = productID
	return nil
}

func (m *memOrderRepo) UpdateStatus(orderID, status string, fulfilledAt *time.Time, fulfilledBy string) error {
	order, ok := m.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	order.Status = status
	order.FulfilledAt = fulfilledAt
	order.FulfilledBy = fulfilledBy
	return nil
}

func (m *memOrderRepo) ListByStatus(status string, limit, offset int) ([]*entity.ExternalOrder, error) {
	var out []*entity.ExternalOrder
	for _, order := range m.orders {
		if order.Status == status {
			copied := *order
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memLinkRepo struct {
	links []*entity.ProductLink
}

var _ repository.ProductLinkRepository = (*memLinkRepo)(nil)

func (m *memLinkRepo) Create(link *entity.ProductLink) error {
	for _, existing := range m.links {
		if existing.Platform == link.Platform && existing.ExternalProductID == link.ExternalProductID &&
			existing.ExternalVariantID == link.ExternalVariantID && existing.SKU == link.SKU {
			return domain.ErrDuplicate
		}
	}
	copied := *link
	m.links = append(m.links, &copied)
	return nil
}

func (m *memLinkRepo) GetBySKU(platform, sku string) (*entity.ProductLink, error) {
	if sku == "" {
		return nil, domain.ErrNotFound
	}
	for _, link := range m.links {
		if link.Platform == platform && link.SKU == sku {
			copied := *link
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memLinkRepo) GetByExternalProduct(platform, externalProductID, externalVariantID string) (*entity.ProductLink, error) {
	for _, link := range m.links {
		if link.Platform == platform && link.ExternalProductID == externalProductID &&
			link.ExternalVariantID == externalVariantID {
			copied := *link
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memProductRepo struct {
	products map[string]*entity.Product
}

var _ repository.ProductRepository = (*memProductRepo)(nil)

func newMemProductRepo(ids ...string) *memProductRepo {
	m := &memProductRepo{products: make(map[string]*entity.Product)}
	for _, id := range ids {
		m.products[id] = &entity.Product{ID: id, Name: "Producto " + id}
	}
	return m
}

func (m *memProductRepo) Create(product *entity.Product) error { return nil }

func (m *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memProductRepo) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }
func (m *memProductRepo) UpdateMetadata(product *entity.Product) error      { return nil }
func (m *memProductRepo) SoftDelete(id string) error                        { return nil }

// memTxRunner transacción simulada: snapshot al entrar, restauración si fn falla.
type memTxRunner struct {
	orders *memOrderRepo
	links  *memLinkRepo
}

var _ orders.TxRunner = (*memTxRunner)(nil)

func (r *memTxRunner) Run(ctx context.Context, fn func(repos orders.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ordersSnap := make(map[string]*entity.ExternalOrder, len(r.orders.orders))
	for k, v := range r.orders.orders {
		copied := *v
		ordersSnap[k] = &copied
	}
	itemsSnap := make(map[string]*entity.ExternalOrderItem, len(r.orders.items))
	for k, v := range r.orders.items {
		copied := *v
		itemsSnap[k] = &copied
	}
	if err := fn(orders.Repos{Orders: r.orders, Links: r.links}); err != nil {
		r.orders.orders = ordersSnap
		r.orders.items = itemsSnap
		return err
	}
	return nil
}

// memIdemStore camino rápido de idempotencia: duplicada tras la primera reserva.
type memIdemStore struct {
	reserved map[string]bool
	failWith error
}

var _ orders.IdempotencyStore = (*memIdemStore)(nil)

func newMemIdemStore() *memIdemStore {
	return &memIdemStore{reserved: make(map[string]bool)}
}

func (m *memIdemStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	if m.reserved[key] {
		return false, nil
	}
	m.reserved[key] = true
	return true, nil
}

func (m *memOrderRepo) seedOrder(platform, externalID string) *entity.ExternalOrder {
	order := &entity.ExternalOrder{
		ID:         uuid.NewString(),
		Platform:   platform,
		ExternalID: externalID,
		Status:     entity.OrderStatusPending,
	}
	m.orders[order.ID] = order
	return order
}

func (m *memOrderRepo) seedItem(orderID, sku, externalProductID string) *entity.ExternalOrderItem {
	item := &entity.ExternalOrderItem{
		ID:                uuid.NewString(),
		OrderID:           orderID,
		SKU:               sku,
		ExternalProductID: externalProductID,
		Quantity:          1,
	}
	m.items[item.ID] = item
	return item
}
