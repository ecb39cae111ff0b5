package stock

import (
	"context"
	"time"

	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
	"github.com/jcastellr/bodega-api/pkg/metrics"
)

// AdjustUseCase aplica un ajuste de una sola ubicación (entrada, salida o
// corrección) de forma transaccional: mutación de caché + asiento del ledger.
type AdjustUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	metrics      *metrics.StockMetrics
}

// NewAdjustUseCase construye el caso de uso.
func NewAdjustUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	m *metrics.StockMetrics,
) *AdjustUseCase {
	return &AdjustUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		metrics:      m,
	}
}

// AdjustInput entrada para un ajuste. Delta con signo. AllowNegative es la
// política del call site: un stock-out manual lo deja en false; un auto-add
// compensatorio del sistema lo activa y tolera negativos transitorios hasta
// compensar.
type AdjustInput struct {
	ProductID       string
	LocationID      string
	UserID          string
	Delta           int64
	Note            string
	AllowNegative   bool
	ExpectedVersion *int64
}

// AdjustResult resultado del ajuste aplicado.
type AdjustResult struct {
	NewQuantity int64
	NewVersion  int64
}

// Adjust valida entrada y existencia, y dentro de una transacción revalida la
// suficiencia (si la política lo exige) y aplica el delta vía la primitiva
// optimista. Un conflicto de versión burbujea como error distinto de stock
// insuficiente.
func (uc *AdjustUseCase) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	started := time.Now()
	result, err := uc.adjust(ctx, in)
	uc.metrics.Observe(metrics.OpAdjustment, outcomeLabel(err), time.Since(started))
	return result, err
}

func (uc *AdjustUseCase) adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.ProductID == "" || in.LocationID == "" || in.Delta == 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := resolveProduct(uc.productRepo, in.ProductID); err != nil {
		return nil, err
	}
	if err := resolveLocation(uc.locationRepo, in.LocationID); err != nil {
		return nil, err
	}

	var result *AdjustResult
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		// Revalidación dentro de la tx: el pre-chequeo del caller puede estar obsoleto.
		if in.Delta < 0 && !in.AllowNegative {
			current, err := r.Stock.Get(in.ProductID, in.LocationID)
			if err != nil {
				return err
			}
			var qty int64
			if current != nil {
				qty = current.Quantity
			}
			if qty+in.Delta < 0 {
				return domain.NewInsufficientStockError(in.ProductID, in.LocationID, -in.Delta, qty)
			}
		}

		updated, err := ApplyDelta(r, DeltaInput{
			ProductID:       in.ProductID,
			LocationID:      in.LocationID,
			UserID:          in.UserID,
			Delta:           in.Delta,
			ExpectedVersion: in.ExpectedVersion,
			LogType:         entity.LogTypeAdjustment,
			Note:            in.Note,
		})
		if err != nil {
			return err
		}
		result = &AdjustResult{NewQuantity: updated.Quantity, NewVersion: updated.Version}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveProduct verifica que el producto exista y no esté soft-deleted.
func resolveProduct(repo repository.ProductRepository, id string) error {
	product, err := repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil || product.IsDeleted() {
		return domain.ErrNotFound
	}
	return nil
}

// resolveLocation verifica que la ubicación exista.
func resolveLocation(repo repository.LocationRepository, id string) error {
	location, err := repo.GetByID(id)
	if err != nil {
		return err
	}
	if location == nil {
		return domain.ErrNotFound
	}
	return nil
}
