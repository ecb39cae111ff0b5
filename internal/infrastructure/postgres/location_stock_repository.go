package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

var _ repository.LocationStockRepository = (*LocationStockRepo)(nil)

// LocationStockRepo implementación de LocationStockRepository sobre PostgreSQL
// (usable con pool o tx).
type LocationStockRepo struct {
	q Querier
}

// NewLocationStockRepository construye el adaptador de stock por ubicación. Pasar pool o tx (Querier).
func NewLocationStockRepository(q Querier) *LocationStockRepo {
	return &LocationStockRepo{q: q}
}

// Get obtiene la fila de stock del par (producto, ubicación) o nil si no existe.
func (r *LocationStockRepo) Get(productID, locationID string) (*entity.LocationStock, error) {
	query := `
		SELECT product_id, location_id, quantity, min_quantity, version, updated_at
		FROM location_stock WHERE product_id = $1 AND location_id = $2`
	var s entity.LocationStock
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&s.ProductID, &s.LocationID, &s.Quantity, &s.MinQuantity, &s.Version, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location stock: %w", err)
	}
	return &s, nil
}

// ApplyDelta suma delta e incrementa la versión de forma atómica. Sin
// expectedVersion hace upsert (la fila nace con quantity = delta, version = 1).
// Con expectedVersion la actualización es condicional: cero filas afectadas
// significa que otro escritor ganó la carrera y se devuelve ErrVersionConflict.
func (r *LocationStockRepo) ApplyDelta(productID, locationID string, delta int64, expectedVersion *int64) (*entity.LocationStock, error) {
	var s entity.LocationStock
	var err error

	if expectedVersion == nil {
		query := `
			INSERT INTO location_stock (product_id, location_id, quantity, min_quantity, version, updated_at)
			VALUES ($1, $2, $3, 0, 1, now())
			ON CONFLICT (product_id, location_id)
			DO UPDATE SET quantity = location_stock.quantity + EXCLUDED.quantity,
			              version  = location_stock.version + 1,
			              updated_at = now()
			RETURNING product_id, location_id, quantity, min_quantity, version, updated_at`
		err = r.q.QueryRow(context.Background(), query, productID, locationID, delta).Scan(
			&s.ProductID, &s.LocationID, &s.Quantity, &s.MinQuantity, &s.Version, &s.UpdatedAt,
		)
	} else {
		query := `
			UPDATE location_stock
			SET quantity = quantity + $3, version = version + 1, updated_at = now()
			WHERE product_id = $1 AND location_id = $2 AND version = $4
			RETURNING product_id, location_id, quantity, min_quantity, version, updated_at`
		err = r.q.QueryRow(context.Background(), query, productID, locationID, delta, *expectedVersion).Scan(
			&s.ProductID, &s.LocationID, &s.Quantity, &s.MinQuantity, &s.Version, &s.UpdatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewVersionConflictError(productID, locationID, *expectedVersion)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("apply delta: %w", err)
	}
	return &s, nil
}

// ListByProduct devuelve el stock del producto en todas las ubicaciones.
func (r *LocationStockRepo) ListByProduct(productID string) ([]*entity.LocationStock, error) {
	query := `
		SELECT product_id, location_id, quantity, min_quantity, version, updated_at
		FROM location_stock WHERE product_id = $1
		ORDER BY location_id`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock by product: %w", err)
	}
	defer rows.Close()
	return scanLocationStock(rows)
}

// ListBelowMin devuelve las filas en o bajo su umbral de reposición.
func (r *LocationStockRepo) ListBelowMin(locationID string, limit, offset int) ([]*entity.LocationStock, error) {
	query := `
		SELECT product_id, location_id, quantity, min_quantity, version, updated_at
		FROM location_stock
		WHERE min_quantity > 0 AND quantity <= min_quantity
		  AND ($1 = '' OR location_id::text = $1)
		ORDER BY quantity - min_quantity, product_id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list below min: %w", err)
	}
	defer rows.Close()
	return scanLocationStock(rows)
}

// SetMinQuantity fija el umbral de reposición del par; crea la fila con
// cantidad cero si no existe. No incrementa version porque no muta cantidad.
func (r *LocationStockRepo) SetMinQuantity(productID, locationID string, minQuantity int64) error {
	query := `
		INSERT INTO location_stock (product_id, location_id, quantity, min_quantity, version, updated_at)
		VALUES ($1, $2, 0, $3, 1, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET min_quantity = EXCLUDED.min_quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, productID, locationID, minQuantity)
	if err != nil {
		return fmt.Errorf("set min quantity: %w", err)
	}
	return nil
}

func scanLocationStock(rows pgx.Rows) ([]*entity.LocationStock, error) {
	var out []*entity.LocationStock
	for rows.Next() {
		var s entity.LocationStock
		if err := rows.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.MinQuantity, &s.Version, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location stock: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
