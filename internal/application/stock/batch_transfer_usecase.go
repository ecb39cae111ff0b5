package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jcastellr/bodega-api/internal/application/audit"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
	"github.com/jcastellr/bodega-api/pkg/metrics"
)

// BatchTransferUseCase orquesta N traslados independientes desde N orígenes
// hacia un destino ("stock in"). A diferencia del traslado simple, el éxito
// parcial es un resultado de primera clase: cada sub-traslado confirma por su
// cuenta y un fallo en uno no detiene a los demás.
type BatchTransferUseCase struct {
	transfer     *TransferUseCase
	stockRepo    repository.LocationStockRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	metrics      *metrics.StockMetrics
}

// NewBatchTransferUseCase construye el caso de uso. stockRepo debe estar atado
// al pool (la pre-validación es de solo lectura, fuera de transacción).
func NewBatchTransferUseCase(
	transfer *TransferUseCase,
	stockRepo repository.LocationStockRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	m *metrics.StockMetrics,
) *BatchTransferUseCase {
	return &BatchTransferUseCase{
		transfer:     transfer,
		stockRepo:    stockRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		metrics:      m,
	}
}

// BatchSource una línea de origen del lote.
type BatchSource struct {
	FromLocationID  string
	Quantity        int64
	ExpectedVersion *int64
}

// BatchTransferInput entrada del traslado por lotes.
type BatchTransferInput struct {
	ProductID    string
	ToLocationID string
	UserID       string
	Sources      []BatchSource
}

// BatchLineResult resultado de un origen: o se trasladó su cantidad completa o
// falló con un error (los traslados no son parciales a nivel de línea).
type BatchLineResult struct {
	FromLocationID string
	Quantity       int64
	Succeeded      bool
	Err            error
}

// BatchTransferResult agregado del lote. AllSucceeded false con líneas exitosas
// indica éxito parcial (207 para el caller HTTP).
type BatchTransferResult struct {
	TotalTransferred int64
	BatchID          string
	Lines            []BatchLineResult
	AllSucceeded     bool
}

// SourceShortfall faltante de un origen detectado en la pre-validación.
type SourceShortfall struct {
	FromLocationID  string
	Requested       int64
	CurrentQuantity int64
	Shortfall       int64
}

// BatchInsufficientError falla del lote completo en pre-validación: ningún
// traslado se intentó. Enumera el faltante por origen.
type BatchInsufficientError struct {
	ProductID  string
	Shortfalls []SourceShortfall
}

func (e *BatchInsufficientError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s faltan %d", s.FromLocationID, s.Shortfall))
	}
	return fmt.Sprintf("stock insuficiente para el lote del producto %s: %s", e.ProductID, strings.Join(parts, "; "))
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *BatchInsufficientError) Unwrap() error { return domain.ErrInsufficientStock }

// Execute corre el lote:
//  1. rechaza de entrada orígenes iguales al destino o duplicados,
//  2. resuelve existencia de producto y de todas las ubicaciones,
//  3. pre-valida disponibilidad de cada origen; cualquier faltante aborta el
//     lote completo con la lista estructurada de faltantes, sin intentar nada,
//  4. abre un batch de auditoría y ejecuta cada traslado secuencialmente y de
//     forma independiente: un conflicto de versión o error de runtime en un
//     origen se captura como fallo de esa línea y se continúa con las demás,
//  5. agrega: TotalTransferred suma solo los orígenes exitosos.
//
// La pre-validación evita la mayoría de fallos a mitad de lote, pero un writer
// concurrente aún puede invalidar un origen entre validación y ejecución; de
// ahí el continuar-ante-error en lugar de todo-o-nada.
func (uc *BatchTransferUseCase) Execute(ctx context.Context, in BatchTransferInput) (*BatchTransferResult, error) {
	started := time.Now()
	result, err := uc.execute(ctx, in)
	outcome := outcomeLabel(err)
	if err == nil && !result.AllSucceeded {
		outcome = metrics.OutcomePartial
	}
	uc.metrics.Observe(metrics.OpBatchTransfer, outcome, time.Since(started))
	return result, err
}

func (uc *BatchTransferUseCase) execute(ctx context.Context, in BatchTransferInput) (*BatchTransferResult, error) {
	if in.ProductID == "" || in.ToLocationID == "" || len(in.Sources) == 0 {
		return nil, domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(in.Sources))
	for _, src := range in.Sources {
		if src.FromLocationID == in.ToLocationID || src.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if seen[src.FromLocationID] {
			return nil, domain.ErrInvalidInput
		}
		seen[src.FromLocationID] = true
	}

	if err := resolveProduct(uc.productRepo, in.ProductID); err != nil {
		return nil, err
	}
	if err := resolveLocation(uc.locationRepo, in.ToLocationID); err != nil {
		return nil, err
	}
	for _, src := range in.Sources {
		if err := resolveLocation(uc.locationRepo, src.FromLocationID); err != nil {
			return nil, err
		}
	}

	// Pre-validación de todos los orígenes: sin faltantes o no se intenta nada.
	var shortfalls []SourceShortfall
	for _, src := range in.Sources {
		avail, err := ValidateAvailability(uc.stockRepo, in.ProductID, src.FromLocationID, src.Quantity)
		if err != nil {
			return nil, err
		}
		if !avail.IsValid {
			shortfalls = append(shortfalls, SourceShortfall{
				FromLocationID:  src.FromLocationID,
				Requested:       src.Quantity,
				CurrentQuantity: avail.CurrentQuantity,
				Shortfall:       avail.Shortfall,
			})
		}
	}
	if len(shortfalls) > 0 {
		return nil, &BatchInsufficientError{ProductID: in.ProductID, Shortfalls: shortfalls}
	}

	// Un solo batch para todo el lote: cada asiento del ledger queda con el
	// mismo id de correlación, pase lo que pase línea a línea.
	batch := audit.NewBatch()

	result := &BatchTransferResult{BatchID: batch.ID, AllSucceeded: true}
	for _, src := range in.Sources {
		line := BatchLineResult{FromLocationID: src.FromLocationID, Quantity: src.Quantity}
		_, err := uc.transfer.Transfer(ctx, TransferInput{
			ProductID:           in.ProductID,
			FromLocationID:      src.FromLocationID,
			ToLocationID:        in.ToLocationID,
			UserID:              in.UserID,
			Quantity:            src.Quantity,
			ExpectedFromVersion: src.ExpectedVersion,
			Batch:               batch,
		})
		if err != nil {
			// El contexto cancelado sí aborta el resto: ya no hay caller esperando.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			line.Err = err
			result.AllSucceeded = false
		} else {
			line.Succeeded = true
			result.TotalTransferred += src.Quantity
		}
		result.Lines = append(result.Lines, line)
	}
	return result, nil
}
