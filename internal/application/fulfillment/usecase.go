package fulfillment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jcastellr/bodega-api/internal/application/audit"
	"github.com/jcastellr/bodega-api/internal/application/stock"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
	"github.com/jcastellr/bodega-api/pkg/metrics"
)

// Razones de omisión de una línea durante el despacho.
const (
	SkipAlreadyFulfilled  = "already_fulfilled"
	SkipUnmapped          = "unmapped"
	SkipInsufficientStock = "insufficient_stock"
)

// DefaultTimeout cota superior del despacho: la transacción toca muchas líneas
// en secuencia y no debe quedar abierta sin límite.
const DefaultTimeout = 30 * time.Second

// UseCase es el motor de despacho de órdenes externas: mapea líneas a productos
// internos, valida disponibilidad y deduce stock transaccionalmente como una
// unidad, actualizando el estado por línea y por orden.
type UseCase struct {
	txRunner     TxRunner
	orderRepo    repository.ExternalOrderRepository
	stockRepo    repository.LocationStockRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	timeout      time.Duration
	metrics      *metrics.StockMetrics
}

// NewUseCase construye el motor. orderRepo/stockRepo deben estar atados al pool
// (se usan para la fase de validación, de solo lectura); timeout cero aplica
// DefaultTimeout.
func NewUseCase(
	txRunner TxRunner,
	orderRepo repository.ExternalOrderRepository,
	stockRepo repository.LocationStockRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	timeout time.Duration,
	m *metrics.StockMetrics,
) *UseCase {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &UseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		stockRepo:    stockRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		timeout:      timeout,
		metrics:      m,
	}
}

// ItemIssue problema de una línea detectado en la validación.
type ItemIssue struct {
	ItemID          string
	Reason          string
	Remaining       int64
	CurrentQuantity int64
	Shortfall       int64
}

// ValidationResult resultado de la fase de validación (read-only).
type ValidationResult struct {
	OrderID             string
	CanFulfill          bool
	RequiresAttention   bool
	Issues              []ItemIssue
	SuggestedLocationID string
	SuggestedCoverage   int
}

// Validate examina cada línea de la orden: cantidad restante, mapeo a producto
// interno y disponibilidad (en la ubicación propuesta, o sumada entre todas si
// no hay ubicación). CanFulfill solo si ninguna línea tiene problemas;
// RequiresAttention si alguna está sin mapear o corta de stock.
//
// Sin ubicación preseleccionada, puntúa cada ubicación candidata por cuántas
// líneas quedarían completamente satisfechas allí y sugiere la de mejor
// cobertura: una heurística de maximización de cobertura, no un óptimo de costo.
func (uc *UseCase) Validate(ctx context.Context, orderID, locationID string) (*ValidationResult, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if locationID != "" {
		location, err := uc.locationRepo.GetByID(locationID)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, domain.ErrNotFound
		}
	}

	items, err := uc.orderRepo.ListItems(orderID)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{OrderID: orderID, CanFulfill: true}

	// Stock por ubicación de cada producto mapeado (para disponibilidad sumada
	// y para el puntaje de cobertura).
	stockByProduct := make(map[string][]*entity.LocationStock)
	for _, item := range items {
		if !item.IsMapped() {
			continue
		}
		if _, ok := stockByProduct[item.ProductID]; ok {
			continue
		}
		levels, err := uc.stockRepo.ListByProduct(item.ProductID)
		if err != nil {
			return nil, err
		}
		stockByProduct[item.ProductID] = levels
	}

	for _, item := range items {
		remaining := item.Remaining()
		switch {
		case item.FullyFulfilled():
			result.Issues = append(result.Issues, ItemIssue{ItemID: item.ID, Reason: SkipAlreadyFulfilled})
			result.CanFulfill = false
		case !item.IsMapped():
			result.Issues = append(result.Issues, ItemIssue{ItemID: item.ID, Reason: SkipUnmapped, Remaining: remaining})
			result.CanFulfill = false
			result.RequiresAttention = true
		default:
			available := availableAt(stockByProduct[item.ProductID], locationID)
			if available < remaining {
				result.Issues = append(result.Issues, ItemIssue{
					ItemID:          item.ID,
					Reason:          SkipInsufficientStock,
					Remaining:       remaining,
					CurrentQuantity: available,
					Shortfall:       remaining - available,
				})
				result.CanFulfill = false
				result.RequiresAttention = true
			}
		}
	}

	if locationID == "" {
		result.SuggestedLocationID, result.SuggestedCoverage = suggestLocation(items, stockByProduct)
	}
	return result, nil
}

// availableAt devuelve la cantidad en una ubicación puntual, o la suma entre
// todas si locationID es vacío.
func availableAt(levels []*entity.LocationStock, locationID string) int64 {
	var total int64
	for _, level := range levels {
		if locationID == "" {
			total += level.Quantity
		} else if level.LocationID == locationID {
			return level.Quantity
		}
	}
	if locationID != "" {
		return 0
	}
	return total
}

// suggestLocation puntúa cada ubicación por líneas completamente satisfacibles
// y devuelve la mejor (empates por id para un resultado determinista).
func suggestLocation(items []*entity.ExternalOrderItem, stockByProduct map[string][]*entity.LocationStock) (string, int) {
	coverage := make(map[string]int)
	for _, item := range items {
		if !item.IsMapped() || item.FullyFulfilled() {
			continue
		}
		remaining := item.Remaining()
		for _, level := range stockByProduct[item.ProductID] {
			if level.Quantity >= remaining {
				coverage[level.LocationID]++
			}
		}
	}
	best, bestScore := "", 0
	ids := make([]string, 0, len(coverage))
	for id := range coverage {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if coverage[id] > bestScore {
			best, bestScore = id, coverage[id]
		}
	}
	return best, bestScore
}

// Line una línea a despachar. ProductID opcional fuerza el producto a deducir
// por encima del mapeo existente de la línea.
type Line struct {
	ItemID    string
	Quantity  int64
	ProductID string
}

// Input entrada de la fase de ejecución.
type Input struct {
	OrderID    string
	LocationID string
	UserID     string
	Lines      []Line
	Notes      string
}

// FulfilledLine línea despachada con éxito.
type FulfilledLine struct {
	ItemID       string
	ProductID    string
	Quantity     int64
	FulfilledQty int64
}

// SkippedLine línea omitida con su razón (already_fulfilled | unmapped |
// insufficient_stock). Las omisiones no abortan la transacción.
type SkippedLine struct {
	ItemID string
	Reason string
}

// FailedLine línea que falló por un error inesperado, distinto de una omisión:
// su savepoint se revirtió pero las demás líneas continúan.
type FailedLine struct {
	ItemID string
	Err    error
}

// Result resultado por línea + estado final de la orden.
type Result struct {
	OrderID     string
	OrderStatus string
	BatchID     string
	Fulfilled   []FulfilledLine
	Skipped     []SkippedLine
	Failed      []FailedLine
}

// Fulfill ejecuta el despacho en una sola transacción para toda la llamada, con
// cota de tiempo explícita. Por cada línea solicitada:
//  1. localiza la línea; si ya está completa, omite con already_fulfilled,
//  2. recorta la cantidad solicitada a la restante (nunca sobre-despacha),
//  3. resuelve el producto: override explícito, si no el mapeo de la línea, si
//     no hay ninguno omite con unmapped,
//  4. revalida disponibilidad en la ubicación para la cantidad recortada;
//     faltante ⇒ omite con insufficient_stock sin abortar las demás,
//  5. en un savepoint propio: asiento ADJUSTMENT negativo + mutación de la
//     caché + incremento del acumulado de la línea. Un error inesperado
//     revierte solo ese savepoint y queda en Failed.
//
// Al final recalcula los totales de la orden y transiciona el estado:
// pending → processing al despachar algo, → fulfilled al igualar los totales
// (estampando fulfilledAt/fulfilledBy). Los estados nunca retroceden.
func (uc *UseCase) Fulfill(ctx context.Context, in Input) (*Result, error) {
	started := time.Now()
	result, err := uc.fulfill(ctx, in)
	outcome := ""
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case len(result.Skipped) > 0 || len(result.Failed) > 0:
		outcome = metrics.OutcomePartial
	default:
		outcome = metrics.OutcomeOK
	}
	uc.metrics.Observe(metrics.OpFulfillment, outcome, time.Since(started))
	return result, err
}

func (uc *UseCase) fulfill(ctx context.Context, in Input) (*Result, error) {
	if in.OrderID == "" || in.LocationID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range in.Lines {
		if line.ItemID == "" || line.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}
	location, err := uc.locationRepo.GetByID(in.LocationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	batch := audit.NewBatch()
	result := &Result{OrderID: in.OrderID, BatchID: batch.ID}

	err = uc.txRunner.Run(ctx, func(r Repos, savepoint SavepointRunner) error {
		order, err := r.Orders.GetByID(in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		items, err := r.Orders.ListItems(in.OrderID)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.ExternalOrderItem, len(items))
		for _, item := range items {
			byID[item.ID] = item
		}

		for _, line := range in.Lines {
			item, ok := byID[line.ItemID]
			if !ok {
				result.Failed = append(result.Failed, FailedLine{ItemID: line.ItemID, Err: domain.ErrNotFound})
				continue
			}
			if item.FullyFulfilled() {
				result.Skipped = append(result.Skipped, SkippedLine{ItemID: item.ID, Reason: SkipAlreadyFulfilled})
				continue
			}
			qty := line.Quantity
			if remaining := item.Remaining(); qty > remaining {
				qty = remaining
			}
			productID := line.ProductID
			if productID == "" {
				productID = item.ProductID
			}
			if productID == "" {
				result.Skipped = append(result.Skipped, SkippedLine{ItemID: item.ID, Reason: SkipUnmapped})
				continue
			}

			current, err := r.Stock.Get(productID, in.LocationID)
			if err != nil {
				return err
			}
			var available int64
			if current != nil {
				available = current.Quantity
			}
			if available < qty {
				result.Skipped = append(result.Skipped, SkippedLine{ItemID: item.ID, Reason: SkipInsufficientStock})
				continue
			}

			lineQty := qty
			lineProduct := productID
			spErr := savepoint(func(r2 Repos) error {
				note := in.Notes
				if note == "" {
					note = fmt.Sprintf("Despacho orden %s/%s", order.Platform, order.ExternalID)
				}
				if _, err := stock.ApplyDelta(stock.Repos{Stock: r2.Stock, Ledger: r2.Ledger}, stock.DeltaInput{
					ProductID:  lineProduct,
					LocationID: in.LocationID,
					UserID:     in.UserID,
					Delta:      -lineQty,
					LogType:    entity.LogTypeAdjustment,
					Note:       note,
					BatchID:    batch.ID,
				}); err != nil {
					return err
				}
				updated, err := r2.Orders.IncrementItemFulfilledQty(item.ID, lineQty)
				if err != nil {
					return err
				}
				item.FulfilledQty = updated.FulfilledQty
				return nil
			})
			if spErr != nil {
				result.Failed = append(result.Failed, FailedLine{ItemID: item.ID, Err: spErr})
				continue
			}
			result.Fulfilled = append(result.Fulfilled, FulfilledLine{
				ItemID:       item.ID,
				ProductID:    lineProduct,
				Quantity:     lineQty,
				FulfilledQty: item.FulfilledQty,
			})
		}

		// Totales de la orden y transición de estado (nunca retrocede).
		var totalQty, totalFulfilled int64
		for _, item := range items {
			totalQty += item.Quantity
			totalFulfilled += item.FulfilledQty
		}
		status := order.Status
		switch {
		case totalFulfilled >= totalQty && totalQty > 0 && status != entity.OrderStatusFulfilled:
			now := time.Now()
			if err := r.Orders.UpdateStatus(order.ID, entity.OrderStatusFulfilled, &now, in.UserID); err != nil {
				return err
			}
			status = entity.OrderStatusFulfilled
		case totalFulfilled > 0 && status == entity.OrderStatusPending:
			if err := r.Orders.UpdateStatus(order.ID, entity.OrderStatusProcessing, nil, ""); err != nil {
				return err
			}
			status = entity.OrderStatusProcessing
		}
		result.OrderStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
