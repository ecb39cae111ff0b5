package fulfillment_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jcastellr/bodega-api/internal/application/fulfillment"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con la semántica del adaptador PostgreSQL: upsert/CAS en
// stock, incremento con guardia en las líneas, savepoints con snapshot.
// ──────────────────────────────────────────────────────────────────────────────

type pairKey struct{ productID, locationID string }

type memStockRepo struct {
	rows map[pairKey]*entity.LocationStock
}

var _ repository.LocationStockRepository = (*memStockRepo)(nil)

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{rows: make(map[pairKey]*entity.LocationStock)}
}

func (m *memStockRepo) seed(productID, locationID string, qty int64) {
	m.rows[pairKey{productID, locationID}] = &entity.LocationStock{
		ProductID: productID, LocationID: locationID, Quantity: qty, Version: 1,
	}
}

func (m *memStockRepo) Get(productID, locationID string) (*entity.LocationStock, error) {
	row, ok := m.rows[pairKey{productID, locationID}]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *memStockRepo) ApplyDelta(productID, locationID string, delta int64, expectedVersion *int64) (*entity.LocationStock, error) {
	key := pairKey{productID, locationID}
	row, ok := m.rows[key]
	if !ok {
		if expectedVersion != nil {
			return nil, domain.NewVersionConflictError(productID, locationID, *expectedVersion)
		}
		row = &entity.LocationStock{ProductID: productID, LocationID: locationID, Quantity: delta, Version: 1}
		m.rows[key] = row
	} else {
		if expectedVersion != nil && row.Version != *expectedVersion {
			return nil, domain.NewVersionConflictError(productID, locationID, *expectedVersion)
		}
		row.Quantity += delta
		row.Version++
	}
	copied := *row
	return &copied, nil
}

func (m *memStockRepo) ListByProduct(productID string) ([]*entity.LocationStock, error) {
	var out []*entity.LocationStock
	for key, row := range m.rows {
		if key.productID == productID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStockRepo) ListBelowMin(locationID string, limit, offset int) ([]*entity.LocationStock, error) {
	return nil, nil
}

func (m *memStockRepo) SetMinQuantity(productID, locationID string, minQuantity int64) error {
	return nil
}

type memLedgerRepo struct {
	entries []*entity.StockLedgerEntry
}

var _ repository.StockLedgerRepository = (*memLedgerRepo)(nil)

func (m *memLedgerRepo) Create(entry *entity.StockLedgerEntry) error {
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *memLedgerRepo) ListByProductAndLocation(productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockLedgerEntry, error) {
	return nil, nil
}

func (m *memLedgerRepo) ListByBatch(batchID string) ([]*entity.StockLedgerEntry, error) {
	var out []*entity.StockLedgerEntry
	for _, e := range m.entries {
		if e.BatchID == batchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLedgerRepo) SumDeltas(productID, locationID string) (int64, error) {
	var sum int64
	for _, e := range m.entries {
		if e.ProductID == productID && e.LocationID == locationID {
			sum += e.Delta
		}
	}
	return sum, nil
}

type memOrderRepo struct {
	orders map[string]*entity.ExternalOrder
	items  map[string]*entity.ExternalOrderItem
	// failIncrementFor simula que otro despachador ganó la carrera en esa línea.
	failIncrementFor string
}

var _ repository.ExternalOrderRepository = (*memOrderRepo)(nil)

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: make(map[string]*entity.ExternalOrder),
		items:  make(map[string]*entity.ExternalOrderItem),
	}
}

func (m *memOrderRepo) seedOrder(id, status string) *entity.ExternalOrder {
	order := &entity.ExternalOrder{ID: id, Platform: "shopify", ExternalID: "EXT-" + id, Status: status}
	m.orders[id] = order
	return order
}

func (m *memOrderRepo) seedItem(orderID, productID string, qty, fulfilled int64) *entity.ExternalOrderItem {
	item := &entity.ExternalOrderItem{
		ID:           uuid.NewString(),
		OrderID:      orderID,
		SKU:          "SKU-" + orderID,
		Quantity:     qty,
		FulfilledQty: fulfilled,
		ProductID:    productID,
	}
	m.items[item.ID] = item
	return item
}

func (m *memOrderRepo) Create(order *entity.ExternalOrder) error {
	for _, existing := range m.orders {
		if existing.Platform == order.Platform && existing.ExternalID == order.ExternalID {
			return domain.ErrDuplicate
		}
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memOrderRepo) CreateItem(item *entity.ExternalOrderItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
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
	if m.failIncrementFor == itemID {
		return nil, domain.ErrVersionConflict
	}
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

// memTxRunner implementa la transacción exterior y los savepoints por snapshot:
// el fallo dentro de un savepoint restaura solo lo escrito en ese savepoint.
type memTxRunner struct {
	orders *memOrderRepo
	stock  *memStockRepo
	ledger *memLedgerRepo
}

var _ fulfillment.TxRunner = (*memTxRunner)(nil)

func (r *memTxRunner) snapshot() (map[pairKey]*entity.LocationStock, []*entity.StockLedgerEntry, map[string]*entity.ExternalOrderItem) {
	stockSnap := make(map[pairKey]*entity.LocationStock, len(r.stock.rows))
	for k, v := range r.stock.rows {
		copied := *v
		stockSnap[k] = &copied
	}
	ledgerSnap := make([]*entity.StockLedgerEntry, len(r.ledger.entries))
	copy(ledgerSnap, r.ledger.entries)
	itemsSnap := make(map[string]*entity.ExternalOrderItem, len(r.orders.items))
	for k, v := range r.orders.items {
		copied := *v
		itemsSnap[k] = &copied
	}
	return stockSnap, ledgerSnap, itemsSnap
}

func (r *memTxRunner) restore(stockSnap map[pairKey]*entity.LocationStock, ledgerSnap []*entity.StockLedgerEntry, itemsSnap map[string]*entity.ExternalOrderItem) {
	r.stock.rows = stockSnap
	r.ledger.entries = ledgerSnap
	r.orders.items = itemsSnap
}

func (r *memTxRunner) Run(ctx context.Context, fn func(repos fulfillment.Repos, savepoint fulfillment.SavepointRunner) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	outerStock, outerLedger, outerItems := r.snapshot()

	repos := fulfillment.Repos{Orders: r.orders, Stock: r.stock, Ledger: r.ledger}
	savepoint := func(inner func(repos fulfillment.Repos) error) error {
		spStock, spLedger, spItems := r.snapshot()
		if err := inner(repos); err != nil {
			r.restore(spStock, spLedger, spItems)
			return err
		}
		return nil
	}

	if err := fn(repos, savepoint); err != nil {
		r.restore(outerStock, outerLedger, outerItems)
		return err
	}
	return nil
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
	return p, nil
}

func (m *memProductRepo) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }
func (m *memProductRepo) UpdateMetadata(product *entity.Product) error      { return nil }
func (m *memProductRepo) SoftDelete(id string) error                        { return nil }

type memLocationRepo struct {
	locations map[string]*entity.Location
}

var _ repository.LocationRepository = (*memLocationRepo)(nil)

func newMemLocationRepo(ids ...string) *memLocationRepo {
	m := &memLocationRepo{locations: make(map[string]*entity.Location)}
	for _, id := range ids {
		m.locations[id] = &entity.Location{ID: id, Name: "Bodega " + id}
	}
	return m
}

func (m *memLocationRepo) Create(location *entity.Location) error { return nil }

func (m *memLocationRepo) GetByID(id string) (*entity.Location, error) {
	l, ok := m.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (m *memLocationRepo) List(limit, offset int) ([]*entity.Location, error) { return nil, nil }
