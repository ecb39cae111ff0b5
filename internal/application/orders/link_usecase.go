package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// LinkUseCase vincula líneas de órdenes externas a productos internos, para
// que el motor de despacho pueda deducir stock de ellas.
type LinkUseCase struct {
	orderRepo   repository.ExternalOrderRepository
	linkRepo    repository.ProductLinkRepository
	productRepo repository.ProductRepository
}

// NewLinkUseCase construye el caso de uso.
func NewLinkUseCase(
	orderRepo repository.ExternalOrderRepository,
	linkRepo repository.ProductLinkRepository,
	productRepo repository.ProductRepository,
) *LinkUseCase {
	return &LinkUseCase{orderRepo: orderRepo, linkRepo: linkRepo, productRepo: productRepo}
}

// LinkInput entrada del vínculo. Persist true además guarda un ProductLink
// para que futuras ingestas de la misma plataforma resuelvan solas.
type LinkInput struct {
	OrderID   string
	ItemID    string
	ProductID string
	Persist   bool
}

// Link asocia la línea al producto interno. La línea debe pertenecer a la
// orden y el producto debe existir y estar activo.
func (uc *LinkUseCase) Link(ctx context.Context, in LinkInput) error {
	if in.OrderID == "" || in.ItemID == "" || in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return err
	}
	if product == nil || product.IsDeleted() {
		return domain.ErrNotFound
	}
	order, err := uc.orderRepo.GetByID(in.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}
	items, err := uc.orderRepo.ListItems(in.OrderID)
	if err != nil {
		return err
	}
	var item *entity.ExternalOrderItem
	for _, candidate := range items {
		if candidate.ID == in.ItemID {
			item = candidate
			break
		}
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := uc.orderRepo.SetItemProduct(in.ItemID, in.ProductID); err != nil {
		return err
	}
	if in.Persist {
		link := &entity.ProductLink{
			ID:                uuid.New().String(),
			Platform:          order.Platform,
			ExternalProductID: item.ExternalProductID,
			ExternalVariantID: item.ExternalVariantID,
			SKU:               item.SKU,
			ProductID:         in.ProductID,
			CreatedAt:         time.Now(),
		}
		if err := uc.linkRepo.Create(link); err != nil {
			return err
		}
	}
	return nil
}
