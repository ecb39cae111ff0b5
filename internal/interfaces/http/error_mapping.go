package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jcastellr/bodega-api/internal/application/dto"
	"github.com/jcastellr/bodega-api/internal/application/stock"
	"github.com/jcastellr/bodega-api/internal/domain"
)

// errorCode devuelve el código estable de un error de dominio (para resultados
// por línea en respuestas parciales).
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrVersionConflict):
		return "VERSION_CONFLICT"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidInput):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}

// domainErrorResponse traduce errores de dominio a respuestas HTTP. Los errores
// retriables (conflicto de versión, stock insuficiente) van como 409 con
// detalles legibles por máquina para que la UI ofrezca la acción compensatoria.
func domainErrorResponse(c *fiber.Ctx, err error) error {
	var batchErr *stock.BatchInsufficientError
	if errors.As(err, &batchErr) {
		shortfalls := make([]dto.SourceShortfall, 0, len(batchErr.Shortfalls))
		for _, s := range batchErr.Shortfalls {
			shortfalls = append(shortfalls, dto.SourceShortfall{
				FromLocationID:  s.FromLocationID,
				Requested:       s.Requested,
				CurrentQuantity: s.CurrentQuantity,
				Shortfall:       s.Shortfall,
			})
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock insuficiente en uno o más orígenes; no se intentó ningún traslado",
			Details: map[string]any{"shortfalls": shortfalls},
		})
	}

	var insufficientErr *domain.InsufficientStockError
	if errors.As(err, &insufficientErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock insuficiente",
			Details: map[string]any{
				"product_id":       insufficientErr.ProductID,
				"location_id":      insufficientErr.LocationID,
				"requested":        insufficientErr.Requested,
				"current_quantity": insufficientErr.CurrentQuantity,
				"shortfall":        insufficientErr.Shortfall,
			},
		})
	}

	var versionErr *domain.VersionConflictError
	if errors.As(err, &versionErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "VERSION_CONFLICT",
			Message: "la versión esperada ya no es vigente; releer y reintentar",
			Details: map[string]any{
				"product_id":       versionErr.ProductID,
				"location_id":      versionErr.LocationID,
				"expected_version": versionErr.ExpectedVersion,
			},
		})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "VERSION_CONFLICT", Message: "conflicto de concurrencia; releer y reintentar"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
