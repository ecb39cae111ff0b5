package stock

import (
	"errors"

	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/pkg/metrics"
)

// outcomeLabel traduce el error de una operación a la etiqueta de métrica.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrVersionConflict):
		return metrics.OutcomeVersionConflict
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.OutcomeInsufficientStock
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeError
	}
}
