package stock_test

import (
	"context"
	"time"

	"github.com/jcastellr/bodega-api/internal/application/stock"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: implementan los puertos de repositorio con la misma
// semántica que el adaptador PostgreSQL (upsert/CAS, append-only).
// ──────────────────────────────────────────────────────────────────────────────

type pairKey struct{ productID, locationID string }

type memStockRepo struct {
	rows map[pairKey]*entity.LocationStock
	// failOn fuerza un error en la llamada N-ésima a ApplyDelta (1-based);
	// simula un fallo de infraestructura a mitad de operación.
	calls   int
	failOn  int
	failErr error
}

var _ repository.LocationStockRepository = (*memStockRepo)(nil)

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{rows: make(map[pairKey]*entity.LocationStock)}
}

func (m *memStockRepo) seed(productID, locationID string, qty, version int64) {
	m.rows[pairKey{productID, locationID}] = &entity.LocationStock{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   qty,
		Version:    version,
		UpdatedAt:  time.Now(),
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
	m.calls++
	if m.failOn > 0 && m.calls == m.failOn {
		return nil, m.failErr
	}
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
	row.UpdatedAt = time.Now()
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
	var out []*entity.LocationStock
	for _, row := range m.rows {
		if row.MinQuantity > 0 && row.Quantity <= row.MinQuantity {
			if locationID == "" || row.LocationID == locationID {
				copied := *row
				out = append(out, &copied)
			}
		}
	}
	return out, nil
}

func (m *memStockRepo) SetMinQuantity(productID, locationID string, minQuantity int64) error {
	key := pairKey{productID, locationID}
	row, ok := m.rows[key]
	if !ok {
		row = &entity.LocationStock{ProductID: productID, LocationID: locationID, Version: 1}
		m.rows[key] = row
	}
	row.MinQuantity = minQuantity
	return nil
}

type memLedgerRepo struct {
	entries []*entity.StockLedgerEntry
}

var _ repository.StockLedgerRepository = (*memLedgerRepo)(nil)

func newMemLedgerRepo() *memLedgerRepo { return &memLedgerRepo{} }

func (m *memLedgerRepo) Create(entry *entity.StockLedgerEntry) error {
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *memLedgerRepo) ListByProductAndLocation(productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockLedgerEntry, error) {
	var out []*entity.StockLedgerEntry
	for _, e := range m.entries {
		if e.ProductID == productID && e.LocationID == locationID {
			out = append(out, e)
		}
	}
	return out, nil
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

func (m *memProductRepo) Create(product *entity.Product) error {
	m.products[product.ID] = product
	return nil
}

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

func (m *memLocationRepo) Create(location *entity.Location) error {
	m.locations[location.ID] = location
	return nil
}

func (m *memLocationRepo) GetByID(id string) (*entity.Location, error) {
	l, ok := m.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (m *memLocationRepo) List(limit, offset int) ([]*entity.Location, error) { return nil, nil }

// memTxRunner ejecuta el callback directamente sobre los repos en memoria. Para
// simular el rollback de una transacción fallida, toma una instantánea del
// estado antes del callback y la restaura si falla.
type memTxRunner struct {
	stock  *memStockRepo
	ledger *memLedgerRepo
}

var _ stock.TxRunner = (*memTxRunner)(nil)

func (r *memTxRunner) Run(ctx context.Context, fn func(repos stock.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stockSnap := make(map[pairKey]*entity.LocationStock, len(r.stock.rows))
	for k, v := range r.stock.rows {
		copied := *v
		stockSnap[k] = &copied
	}
	ledgerSnap := make([]*entity.StockLedgerEntry, len(r.ledger.entries))
	copy(ledgerSnap, r.ledger.entries)

	err := fn(stock.Repos{Stock: r.stock, Ledger: r.ledger})
	if err != nil {
		r.stock.rows = stockSnap
		r.ledger.entries = ledgerSnap
		return err
	}
	return nil
}
