package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

var _ repository.ExternalOrderRepository = (*ExternalOrderRepo)(nil)

// ExternalOrderRepo implementación de ExternalOrderRepository sobre PostgreSQL
// (usable con pool o tx).
type ExternalOrderRepo struct {
	q Querier
}

// NewExternalOrderRepository construye el adaptador de órdenes externas. Pasar pool o tx (Querier).
func NewExternalOrderRepository(q Querier) *ExternalOrderRepo {
	return &ExternalOrderRepo{q: q}
}

const orderColumns = `id, platform, external_id, status, customer, fulfilled_at, fulfilled_by, created_at, updated_at`
const itemColumns = `id, order_id, external_product_id, external_variant_id, sku, quantity, fulfilled_qty, unit_price, COALESCE(product_id::text, '')`

// Create inserta una orden externa. Violación del único (platform, external_id)
// devuelve ErrDuplicate (webhook repetido).
func (r *ExternalOrderRepo) Create(order *entity.ExternalOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = entity.OrderStatusPending
	}

	query := `
		INSERT INTO external_orders (id, platform, external_id, status, customer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Platform, order.ExternalID, order.Status, order.Customer,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create external order: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de orden. product_id vacío queda NULL.
func (r *ExternalOrderRepo) CreateItem(item *entity.ExternalOrderItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	var productID any
	if item.ProductID != "" {
		productID = item.ProductID
	}

	query := `
		INSERT INTO external_order_items (id, order_id, external_product_id, external_variant_id, sku, quantity, fulfilled_qty, unit_price, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, item.ExternalProductID, item.ExternalVariantID,
		item.SKU, item.Quantity, item.FulfilledQty, item.UnitPrice, productID,
	)
	if err != nil {
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por id.
func (r *ExternalOrderRepo) GetByID(id string) (*entity.ExternalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM external_orders WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get external order: %w", err)
	}
	return o, nil
}

// GetByExternalID obtiene una orden por su identidad de origen (dedupe de webhooks).
func (r *ExternalOrderRepo) GetByExternalID(platform, externalID string) (*entity.ExternalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM external_orders WHERE platform = $1 AND external_id = $2`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, platform, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get external order by external id: %w", err)
	}
	return o, nil
}

// ListItems devuelve las líneas de una orden.
func (r *ExternalOrderRepo) ListItems(orderID string) ([]*entity.ExternalOrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM external_order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var out []*entity.ExternalOrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// IncrementItemFulfilledQty suma by al acumulado despachado con la guardia
// fulfilled_qty + by <= quantity en el mismo statement. Cero filas afectadas
// significa que otro despachador concurrente ganó la carrera.
func (r *ExternalOrderRepo) IncrementItemFulfilledQty(itemID string, by int64) (*entity.ExternalOrderItem, error) {
	query := `
		UPDATE external_order_items
		SET fulfilled_qty = fulfilled_qty + $2
		WHERE id = $1 AND fulfilled_qty + $2 <= quantity
		RETURNING ` + itemColumns
	it, err := scanItem(r.q.QueryRow(context.Background(), query, itemID, by))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVersionConflict
		}
		return nil, fmt.Errorf("increment fulfilled qty: %w", err)
	}
	return it, nil
}

// SetItemProduct vincula la línea a un producto interno.
func (r *ExternalOrderRepo) SetItemProduct(itemID, productID string) error {
	query := `UPDATE external_order_items SET product_id = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, itemID, productID)
	if err != nil {
		return fmt.Errorf("set item product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus transiciona el estado de la orden y estampa el despacho si aplica.
func (r *ExternalOrderRepo) UpdateStatus(orderID, status string, fulfilledAt *time.Time, fulfilledBy string) error {
	query := `
		UPDATE external_orders
		SET status = $2, fulfilled_at = $3, fulfilled_by = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, orderID, status, fulfilledAt, fulfilledBy)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByStatus devuelve órdenes en un estado, más recientes primero.
func (r *ExternalOrderRepo) ListByStatus(status string, limit, offset int) ([]*entity.ExternalOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM external_orders
		WHERE status = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders by status: %w", err)
	}
	defer rows.Close()

	var out []*entity.ExternalOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan external order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.ExternalOrder, error) {
	var o entity.ExternalOrder
	err := row.Scan(
		&o.ID, &o.Platform, &o.ExternalID, &o.Status, &o.Customer,
		&o.FulfilledAt, &o.FulfilledBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanItem(row pgx.Row) (*entity.ExternalOrderItem, error) {
	var it entity.ExternalOrderItem
	err := row.Scan(
		&it.ID, &it.OrderID, &it.ExternalProductID, &it.ExternalVariantID,
		&it.SKU, &it.Quantity, &it.FulfilledQty, &it.UnitPrice, &it.ProductID,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
