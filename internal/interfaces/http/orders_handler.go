package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jcastellr/bodega-api/internal/application/dto"
	"github.com/jcastellr/bodega-api/internal/application/orders"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
)

// OrdersHandler maneja la ingesta y consulta de órdenes externas (protegido).
type OrdersHandler struct {
	ingest    *orders.IngestUseCase
	link      *orders.LinkUseCase
	orderRepo repository.ExternalOrderRepository
}

// NewOrdersHandler construye el handler.
func NewOrdersHandler(ingest *orders.IngestUseCase, link *orders.LinkUseCase, orderRepo repository.ExternalOrderRepository) *OrdersHandler {
	return &OrdersHandler{ingest: ingest, link: link, orderRepo: orderRepo}
}

// Ingest godoc
// @Summary      Ingerir una orden normalizada de una plataforma
// @Description  El adaptador de la plataforma ya verificó la firma del webhook y
//
//	normalizó el payload. La entrega es idempotente por (platform, external_id):
//	un duplicado devuelve 200 con la orden existente, sin efectos.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NormalizedOrderRequest  true  "orden normalizada"
// @Success      200   {object}  dto.OrderResponse
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/ingest [post]
func (h *OrdersHandler) Ingest(c *fiber.Ctx) error {
	var req dto.NormalizedOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if details, err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	}

	result, err := h.ingest.Ingest(c.Context(), req)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(orderToDTO(result.Order, result.Items))
}

// GetByID godoc
// @Summary      Obtener una orden externa con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Orden (UUID)"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrdersHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.orderRepo.GetByID(c.Params("id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	items, err := h.orderRepo.ListItems(order.ID)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(orderToDTO(order, items))
}

// ListByStatus godoc
// @Summary      Listar órdenes por estado
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | processing | fulfilled (default pending)"
// @Param        limit   query  int     false  "Máximo de órdenes (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrdersHandler) ListByStatus(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	status := c.Query("status", entity.OrderStatusPending)
	switch status {
	case entity.OrderStatusPending, entity.OrderStatusProcessing, entity.OrderStatusFulfilled:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status inválido"})
	}

	list, err := h.orderRepo.ListByStatus(status, page.Limit, page.Offset)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, order := range list {
		out = append(out, orderToDTO(order, nil))
	}
	return c.JSON(fiber.Map{"total": len(out), "orders": out})
}

// LinkItem godoc
// @Summary      Vincular una línea de orden a un producto interno
// @Description  Resuelve una línea sin mapear. Con persist=true guarda además el
//
//	vínculo para que futuras ingestas de la misma plataforma resuelvan solas.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string  true  "Orden (UUID)"
// @Param        item_id  path  string  true  "Línea (UUID)"
// @Param        body     body  linkItemRequest  true  "product_id y persist"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{item_id}/link [post]
func (h *OrdersHandler) LinkItem(c *fiber.Ctx) error {
	var req linkItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if details, err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	}

	err := h.link.Link(c.Context(), orders.LinkInput{
		OrderID:   c.Params("id"),
		ItemID:    c.Params("item_id"),
		ProductID: req.ProductID,
		Persist:   req.Persist,
	})
	if err != nil {
		if err == domain.ErrDuplicate {
			// El vínculo de plataforma ya existía; la línea sí quedó mapeada.
			return c.SendStatus(fiber.StatusNoContent)
		}
		return domainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type linkItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Persist   bool   `json:"persist,omitempty"`
}

func orderToDTO(order *entity.ExternalOrder, items []*entity.ExternalOrderItem) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:          order.ID,
		Platform:    order.Platform,
		ExternalID:  order.ExternalID,
		Status:      order.Status,
		Customer:    order.Customer,
		FulfilledBy: order.FulfilledBy,
		Items:       make([]dto.OrderItemResponse, 0, len(items)),
	}
	if order.FulfilledAt != nil {
		resp.FulfilledAt = order.FulfilledAt.Format(time.RFC3339)
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:                item.ID,
			ExternalProductID: item.ExternalProductID,
			ExternalVariantID: item.ExternalVariantID,
			SKU:               item.SKU,
			Quantity:          item.Quantity,
			FulfilledQty:      item.FulfilledQty,
			UnitPrice:         item.UnitPrice,
			ProductID:         item.ProductID,
		})
	}
	return resp
}
