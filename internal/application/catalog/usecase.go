// Package catalog cubre el mantenimiento de productos y ubicaciones. Es CRUD
// delgado: todo lo que toca cantidades pasa por las operaciones de stock.
package catalog

import (
	"context"

	"github.com/jcastellr/bodega-api/internal/application/dto"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// UseCase operaciones de catálogo.
type UseCase struct {
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(productRepo repository.ProductRepository, locationRepo repository.LocationRepository) *UseCase {
	return &UseCase{productRepo: productRepo, locationRepo: locationRepo}
}

// CreateProduct registra un producto nuevo.
func (uc *UseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*entity.Product, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	product := &entity.Product{
		Name:              in.Name,
		BaseName:          in.BaseName,
		Variant:           in.Variant,
		Size:              in.Size,
		Unit:              in.Unit,
		LowStockThreshold: in.LowStockThreshold,
		Cost:              in.Cost,
		Price:             in.Price,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct obtiene un producto activo.
func (uc *UseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// ListProducts lista productos activos paginados.
func (uc *UseCase) ListProducts(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return uc.productRepo.List(limit, offset)
}

// UpdateProduct actualiza los metadatos del producto (no toca stock).
func (uc *UseCase) UpdateProduct(ctx context.Context, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = in.Name
	product.BaseName = in.BaseName
	product.Variant = in.Variant
	product.Size = in.Size
	product.Unit = in.Unit
	product.LowStockThreshold = in.LowStockThreshold
	product.Cost = in.Cost
	product.Price = in.Price
	if err := uc.productRepo.UpdateMetadata(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct marca el producto como eliminado. El historial del ledger se
// conserva intacto.
func (uc *UseCase) DeleteProduct(ctx context.Context, id string) error {
	return uc.productRepo.SoftDelete(id)
}

// CreateLocation registra una ubicación nueva.
func (uc *UseCase) CreateLocation(ctx context.Context, name string) (*entity.Location, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	location := &entity.Location{Name: name}
	if err := uc.locationRepo.Create(location); err != nil {
		return nil, err
	}
	return location, nil
}

// GetLocation obtiene una ubicación.
func (uc *UseCase) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	return uc.locationRepo.GetByID(id)
}

// ListLocations lista ubicaciones paginadas.
func (uc *UseCase) ListLocations(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	return uc.locationRepo.List(limit, offset)
}
