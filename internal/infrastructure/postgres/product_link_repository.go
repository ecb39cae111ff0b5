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

var _ repository.ProductLinkRepository = (*ProductLinkRepo)(nil)

// ProductLinkRepo implementación de ProductLinkRepository sobre PostgreSQL
// (usable con pool o tx).
type ProductLinkRepo struct {
	q Querier
}

// NewProductLinkRepository construye el adaptador de vínculos. Pasar pool o tx (Querier).
func NewProductLinkRepository(q Querier) *ProductLinkRepo {
	return &ProductLinkRepo{q: q}
}

const linkColumns = `id, platform, external_product_id, external_variant_id, sku, product_id, created_at`

// Create inserta un vínculo producto externo → interno.
func (r *ProductLinkRepo) Create(link *entity.ProductLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO product_links (id, platform, external_product_id, external_variant_id, sku, product_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		link.ID, link.Platform, link.ExternalProductID, link.ExternalVariantID,
		link.SKU, link.ProductID, link.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create product link: %w", err)
	}
	return nil
}

// GetBySKU resuelve un vínculo por SKU dentro de una plataforma.
func (r *ProductLinkRepo) GetBySKU(platform, sku string) (*entity.ProductLink, error) {
	query := `SELECT ` + linkColumns + ` FROM product_links WHERE platform = $1 AND sku = $2 AND sku <> ''`
	return r.getOne(query, platform, sku)
}

// GetByExternalProduct resuelve un vínculo por id de producto/variante de la plataforma.
func (r *ProductLinkRepo) GetByExternalProduct(platform, externalProductID, externalVariantID string) (*entity.ProductLink, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM product_links
		WHERE platform = $1 AND external_product_id = $2 AND external_variant_id = $3`
	return r.getOne(query, platform, externalProductID, externalVariantID)
}

func (r *ProductLinkRepo) getOne(query string, args ...any) (*entity.ProductLink, error) {
	var l entity.ProductLink
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&l.ID, &l.Platform, &l.ExternalProductID, &l.ExternalVariantID,
		&l.SKU, &l.ProductID, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product link: %w", err)
	}
	return &l, nil
}
