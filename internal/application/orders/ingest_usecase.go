package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcastellr/bodega-api/internal/application/dto"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
	"github.com/jcastellr/bodega-api/pkg/logger"
)

// idempotencyTTL ventana de deduplicación de entregas de webhook. Las
// plataformas reintentan durante horas; la base de datos es la guardia real
// (unicidad por plataforma + id externo), Redis solo el camino rápido.
const idempotencyTTL = 24 * time.Hour

// IngestUseCase ingresa órdenes normalizadas por el adaptador de webhooks
// (firma ya verificada aguas arriba) y las vincula a productos internos.
type IngestUseCase struct {
	txRunner  TxRunner
	orderRepo repository.ExternalOrderRepository
	linkRepo  repository.ProductLinkRepository
	idem      IdempotencyStore // nil = sin camino rápido de dedupe
	log       *logger.Logger
}

// NewIngestUseCase construye el caso de uso. orderRepo/linkRepo atados al pool.
func NewIngestUseCase(
	txRunner TxRunner,
	orderRepo repository.ExternalOrderRepository,
	linkRepo repository.ProductLinkRepository,
	idem IdempotencyStore,
	log *logger.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		linkRepo:  linkRepo,
		idem:      idem,
		log:       log,
	}
}

// IngestResult orden resultante; Created false indica entrega duplicada
// (la orden ya existía y no se tocó).
type IngestResult struct {
	Order   *entity.ExternalOrder
	Items   []*entity.ExternalOrderItem
	Created bool
}

// Ingest crea la orden externa con sus líneas en una transacción, resolviendo
// el vínculo a producto interno por SKU y, si no hay, por id de producto de la
// plataforma. Una entrega repetida del mismo webhook devuelve la orden
// existente sin efectos.
func (uc *IngestUseCase) Ingest(ctx context.Context, in dto.NormalizedOrderRequest) (*IngestResult, error) {
	if in.Platform == "" || in.ExternalID == "" || len(in.LineItems) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range in.LineItems {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	// Camino rápido: SETNX en Redis evita tocar la BD en la ráfaga de
	// reintentos inmediatos de la plataforma.
	if uc.idem != nil {
		key := fmt.Sprintf("order_ingest:%s:%s", in.Platform, in.ExternalID)
		fresh, err := uc.idem.Reserve(ctx, key, idempotencyTTL)
		if err != nil {
			// Redis caído no bloquea la ingesta: la unicidad en BD sigue vigente.
			uc.log.Warn().Err(err).Str("platform", in.Platform).Str("external_id", in.ExternalID).
				Msg("idempotencia redis no disponible, se continúa con dedupe en BD")
		} else if !fresh {
			return uc.existing(in.Platform, in.ExternalID)
		}
	}

	existing, err := uc.orderRepo.GetByExternalID(in.Platform, in.ExternalID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return uc.existingOrder(existing)
	}

	now := time.Now()
	order := &entity.ExternalOrder{
		ID:         uuid.New().String(),
		Platform:   in.Platform,
		ExternalID: in.ExternalID,
		Status:     entity.OrderStatusPending,
		Customer:   in.Customer,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	items := make([]*entity.ExternalOrderItem, 0, len(in.LineItems))

	err = uc.txRunner.Run(ctx, func(r Repos) error {
		if err := r.Orders.Create(order); err != nil {
			return err
		}
		for _, line := range in.LineItems {
			item := &entity.ExternalOrderItem{
				ID:                uuid.New().String(),
				OrderID:           order.ID,
				ExternalProductID: line.ExternalProductID,
				ExternalVariantID: line.ExternalVariantID,
				SKU:               line.SKU,
				Quantity:          line.Quantity,
				UnitPrice:         line.UnitPrice,
			}
			productID, err := uc.resolveLink(r.Links, in.Platform, line)
			if err != nil {
				return err
			}
			item.ProductID = productID
			if err := r.Orders.CreateItem(item); err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		// Carrera entre dos entregas simultáneas: la unicidad en BD deja pasar
		// una sola; la perdedora devuelve la orden ganadora.
		if errors.Is(err, domain.ErrDuplicate) {
			return uc.existing(in.Platform, in.ExternalID)
		}
		return nil, err
	}

	uc.log.Info().Str("order_id", order.ID).Str("platform", in.Platform).
		Str("external_id", in.ExternalID).Int("items", len(items)).
		Msg("orden externa ingresada")
	return &IngestResult{Order: order, Items: items, Created: true}, nil
}

// resolveLink busca el vínculo a producto interno: primero por SKU, luego por
// producto/variante de la plataforma. Sin vínculo la línea queda sin mapear
// (el despacho la omitirá con unmapped hasta que alguien la mapee).
func (uc *IngestUseCase) resolveLink(links repository.ProductLinkRepository, platform string, line dto.NormalizedOrderLineItem) (string, error) {
	if line.SKU != "" {
		link, err := links.GetBySKU(platform, line.SKU)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		if link != nil {
			return link.ProductID, nil
		}
	}
	link, err := links.GetByExternalProduct(platform, line.ExternalProductID, line.ExternalVariantID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	if link != nil {
		return link.ProductID, nil
	}
	return "", nil
}

func (uc *IngestUseCase) existing(platform, externalID string) (*IngestResult, error) {
	order, err := uc.orderRepo.GetByExternalID(platform, externalID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return uc.existingOrder(order)
}

func (uc *IngestUseCase) existingOrder(order *entity.ExternalOrder) (*IngestResult, error) {
	items, err := uc.orderRepo.ListItems(order.ID)
	if err != nil {
		return nil, err
	}
	return &IngestResult{Order: order, Items: items, Created: false}, nil
}
