package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

// StockLedgerRepo implementación de StockLedgerRepository sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: solo INSERT y SELECT.
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

// Create inserta un asiento en el ledger.
func (r *StockLedgerRepo) Create(entry *entity.StockLedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	// batch_id es UUID nullable
	var batchID any
	if entry.BatchID != "" {
		batchID = entry.BatchID
	}

	query := `
		INSERT INTO stock_ledger (id, product_id, location_id, user_id, delta, log_type, note, batch_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ProductID, entry.LocationID, entry.UserID,
		entry.Delta, entry.LogType, entry.Note, batchID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// ListByProductAndLocation devuelve los asientos del par, más recientes primero.
// from y to acotan por created_at cuando no son nil.
func (r *StockLedgerRepo) ListByProductAndLocation(productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockLedgerEntry, error) {
	query := `
		SELECT id, product_id, location_id, user_id, delta, log_type, note, COALESCE(batch_id::text, ''), created_at
		FROM stock_ledger
		WHERE product_id = $1 AND location_id = $2
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at DESC, id
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(context.Background(), query, productID, locationID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	return scanLedgerEntries(rows)
}

// ListByBatch devuelve todos los asientos estampados con el mismo batch.
func (r *StockLedgerRepo) ListByBatch(batchID string) ([]*entity.StockLedgerEntry, error) {
	query := `
		SELECT id, product_id, location_id, user_id, delta, log_type, note, COALESCE(batch_id::text, ''), created_at
		FROM stock_ledger
		WHERE batch_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list ledger by batch: %w", err)
	}
	defer rows.Close()
	return scanLedgerEntries(rows)
}

// SumDeltas suma todos los deltas del par (reconciliación contra la caché).
func (r *StockLedgerRepo) SumDeltas(productID, locationID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(delta), 0)
		FROM stock_ledger
		WHERE product_id = $1 AND location_id = $2`
	var sum int64
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum deltas: %w", err)
	}
	return sum, nil
}

func scanLedgerEntries(rows pgx.Rows) ([]*entity.StockLedgerEntry, error) {
	var out []*entity.StockLedgerEntry
	for rows.Next() {
		var e entity.StockLedgerEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.LocationID, &e.UserID, &e.Delta, &e.LogType, &e.Note, &e.BatchID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
