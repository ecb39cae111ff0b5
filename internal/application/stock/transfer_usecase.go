package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jcastellr/bodega-api/internal/application/audit"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
	"github.com/jcastellr/bodega-api/internal/domain/repository"
	"github.com/jcastellr/bodega-api/pkg/metrics"
)

// TransferUseCase mueve stock entre dos ubicaciones como una sola unidad
// atómica: decremento en origen (con guardia optimista) + incremento en destino
// + dos asientos TRANSFER enlazados por batch, todo en una transacción. Un
// fallo en el decremento no deja mutación parcial; nunca se observa el origen
// decrementado sin su incremento correspondiente.
type TransferUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	metrics      *metrics.StockMetrics
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	m *metrics.StockMetrics,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		metrics:      m,
	}
}

// TransferInput entrada para un traslado. Batch es opcional: si viene vacío se
// abre uno nuevo para enlazar los dos asientos del traslado.
type TransferInput struct {
	ProductID           string
	FromLocationID      string
	ToLocationID        string
	UserID              string
	Quantity            int64
	ExpectedFromVersion *int64
	Note                string
	Batch               audit.Batch
}

// TransferResult estado resultante en ambas ubicaciones.
type TransferResult struct {
	FromQuantity int64
	FromVersion  int64
	ToQuantity   int64
	ToVersion    int64
	BatchID      string
}

// Transfer ejecuta el traslado. Orden del algoritmo:
//  1. valida entrada y existencia de producto y ubicaciones,
//  2. dentro de la tx revalida disponibilidad en origen (stock insuficiente
//     reporta cantidad actual y faltante para que el caller pueda ofrecer un
//     top-up compensatorio),
//  3. aplica -quantity en origen honrando ExpectedFromVersion (el conflicto de
//     versión burbujea como error distinto),
//  4. aplica +quantity en destino sin guardia de versión (upsert, siempre pasa),
//  5. registra los dos asientos TRANSFER con el mismo batch y una nota que
//     nombra ambas ubicaciones.
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	started := time.Now()
	result, err := uc.transfer(ctx, in)
	uc.metrics.Observe(metrics.OpTransfer, outcomeLabel(err), time.Since(started))
	return result, err
}

func (uc *TransferUseCase) transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.ProductID == "" || in.FromLocationID == "" || in.ToLocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.FromLocationID == in.ToLocationID || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := resolveProduct(uc.productRepo, in.ProductID); err != nil {
		return nil, err
	}
	from, err := uc.locationRepo.GetByID(in.FromLocationID)
	if err != nil {
		return nil, err
	}
	to, err := uc.locationRepo.GetByID(in.ToLocationID)
	if err != nil {
		return nil, err
	}
	if from == nil || to == nil {
		return nil, domain.ErrNotFound
	}

	batch := in.Batch
	if batch.IsZero() {
		batch = audit.NewBatch()
	}
	note := in.Note
	if note == "" {
		note = fmt.Sprintf("Traslado %s → %s (%d)", from.Name, to.Name, in.Quantity)
	}

	var result *TransferResult
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		current, err := r.Stock.Get(in.ProductID, in.FromLocationID)
		if err != nil {
			return err
		}
		var qty int64
		if current != nil {
			qty = current.Quantity
		}
		if qty < in.Quantity {
			return domain.NewInsufficientStockError(in.ProductID, in.FromLocationID, in.Quantity, qty)
		}

		origin, err := ApplyDelta(r, DeltaInput{
			ProductID:       in.ProductID,
			LocationID:      in.FromLocationID,
			UserID:          in.UserID,
			Delta:           -in.Quantity,
			ExpectedVersion: in.ExpectedFromVersion,
			LogType:         entity.LogTypeTransfer,
			Note:            note,
			BatchID:         batch.ID,
		})
		if err != nil {
			return err
		}
		dest, err := ApplyDelta(r, DeltaInput{
			ProductID:  in.ProductID,
			LocationID: in.ToLocationID,
			UserID:     in.UserID,
			Delta:      in.Quantity,
			LogType:    entity.LogTypeTransfer,
			Note:       note,
			BatchID:    batch.ID,
		})
		if err != nil {
			return err
		}
		result = &TransferResult{
			FromQuantity: origin.Quantity,
			FromVersion:  origin.Version,
			ToQuantity:   dest.Quantity,
			ToVersion:    dest.Version,
			BatchID:      batch.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
