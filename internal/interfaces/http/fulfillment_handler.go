package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcastellr/bodega-api/internal/application/dto"
	"github.com/jcastellr/bodega-api/internal/application/fulfillment"
)

// FulfillmentHandler maneja la validación y ejecución de despachos (protegido).
type FulfillmentHandler struct {
	uc *fulfillment.UseCase
}

// NewFulfillmentHandler construye el handler.
func NewFulfillmentHandler(uc *fulfillment.UseCase) *FulfillmentHandler {
	return &FulfillmentHandler{uc: uc}
}

// Validate godoc
// @Summary      Validar el despacho de una orden (read-only)
// @Description  Reporta por línea: cantidad restante, mapeo a producto interno
//
//	y disponibilidad. Sin location_id evalúa todas las ubicaciones y sugiere la
//	de mejor cobertura. Nunca muta nada.
//
// @Tags         fulfillment
// @Security     Bearer
// @Produce      json
// @Param        id           path   string  true   "Orden (UUID)"
// @Param        location_id  query  string  false  "Ubicación propuesta (UUID)"
// @Success      200  {object}  dto.ValidateFulfillmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/fulfillment/validate [get]
func (h *FulfillmentHandler) Validate(c *fiber.Ctx) error {
	result, err := h.uc.Validate(c.Context(), c.Params("id"), c.Query("location_id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}

	resp := dto.ValidateFulfillmentResponse{
		OrderID:             result.OrderID,
		CanFulfill:          result.CanFulfill,
		RequiresAttention:   result.RequiresAttention,
		Issues:              make([]dto.FulfillmentIssue, 0, len(result.Issues)),
		SuggestedLocationID: result.SuggestedLocationID,
		SuggestedCoverage:   result.SuggestedCoverage,
	}
	for _, issue := range result.Issues {
		resp.Issues = append(resp.Issues, dto.FulfillmentIssue{
			ItemID:          issue.ItemID,
			Reason:          issue.Reason,
			Remaining:       issue.Remaining,
			CurrentQuantity: issue.CurrentQuantity,
			Shortfall:       issue.Shortfall,
		})
	}
	return c.JSON(resp)
}

// Fulfill godoc
// @Summary      Despachar líneas de una orden
// @Description  Deduce stock por línea en una sola transacción. Las líneas sin
//
//	mapear, ya completas o sin stock se omiten con su razón; un error inesperado
//	en una línea revierte solo esa línea. Las cantidades se recortan a lo
//	restante: nunca se sobre-despacha.
//
// @Tags         fulfillment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Orden (UUID)"
// @Param        body  body  dto.FulfillOrderRequest  true  "location_id y líneas a despachar"
// @Success      200   {object}  dto.FulfillOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/fulfillment [post]
func (h *FulfillmentHandler) Fulfill(c *fiber.Ctx) error {
	var req dto.FulfillOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if details, err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	}

	lines := make([]fulfillment.Line, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, fulfillment.Line{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			ProductID: line.ProductID,
		})
	}

	result, err := h.uc.Fulfill(c.Context(), fulfillment.Input{
		OrderID:    c.Params("id"),
		LocationID: req.LocationID,
		UserID:     GetUserID(c),
		Lines:      lines,
		Notes:      req.Notes,
	})
	if err != nil {
		return domainErrorResponse(c, err)
	}

	resp := dto.FulfillOrderResponse{
		OrderID:     result.OrderID,
		OrderStatus: result.OrderStatus,
		BatchID:     result.BatchID,
		Fulfilled:   make([]dto.FulfilledLineResponse, 0, len(result.Fulfilled)),
		Skipped:     make([]dto.SkippedLineResponse, 0, len(result.Skipped)),
		Failed:      make([]dto.FailedLineResponse, 0, len(result.Failed)),
	}
	for _, line := range result.Fulfilled {
		resp.Fulfilled = append(resp.Fulfilled, dto.FulfilledLineResponse{
			ItemID:       line.ItemID,
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			FulfilledQty: line.FulfilledQty,
		})
	}
	for _, line := range result.Skipped {
		resp.Skipped = append(resp.Skipped, dto.SkippedLineResponse{ItemID: line.ItemID, Reason: line.Reason})
	}
	for _, line := range result.Failed {
		resp.Failed = append(resp.Failed, dto.FailedLineResponse{ItemID: line.ItemID, Error: line.Err.Error()})
	}
	return c.JSON(resp)
}
