// Package metrics expone contadores e histogramas Prometheus para las
// operaciones de stock. Todos los métodos toleran receptor nil para que los
// casos de uso no dependan de que el colector esté registrado (tests).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Nombres de operación para la etiqueta operation.
const (
	OpAdjustment    = "adjustment"
	OpTransfer      = "transfer"
	OpBatchTransfer = "batch_transfer"
	OpFulfillment   = "fulfillment"
)

// Desenlaces para la etiqueta outcome.
const (
	OutcomeOK                = "ok"
	OutcomePartial           = "partial"
	OutcomeVersionConflict   = "version_conflict"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeNotFound          = "not_found"
	OutcomeValidation        = "validation"
	OutcomeError             = "error"
)

// StockMetrics agrupa los colectores de las operaciones de inventario.
type StockMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewStockMetrics crea y registra los colectores en el registry dado.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	m := &StockMetrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_operations_total",
				Help: "Total de operaciones de stock por operación y desenlace.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stock_operation_duration_seconds",
				Help:    "Duración de las operaciones de stock.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.duration)
	}
	return m
}

// Observe registra una operación completada con su desenlace y duración.
func (m *StockMetrics) Observe(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}
