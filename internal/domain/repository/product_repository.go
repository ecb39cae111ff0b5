package repository

import "github.com/jcastellr/bodega-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve también productos con soft delete; el caller decide si los acepta.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
	UpdateMetadata(product *entity.Product) error
	SoftDelete(id string) error
}
