package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastellr/bodega-api/internal/application/stock"
	"github.com/jcastellr/bodega-api/internal/domain"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
)

type transferEnv struct {
	stockRepo *memStockRepo
	ledger    *memLedgerRepo
	uc        *stock.TransferUseCase
}

func newTransferEnv() *transferEnv {
	stockRepo := newMemStockRepo()
	ledger := newMemLedgerRepo()
	runner := &memTxRunner{stock: stockRepo, ledger: ledger}
	uc := stock.NewTransferUseCase(runner, newMemProductRepo(productA), newMemLocationRepo(locationA, locationB, locationC), nil)
	return &transferEnv{stockRepo: stockRepo, ledger: ledger, uc: uc}
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

// Traslado feliz: deduce en origen, acredita en destino, dos asientos TRANSFER
// con el mismo batch.
func TestTransfer_MueveStockConDosAsientos(t *testing.T) {
	env := newTransferEnv()
	env.stockRepo.seed(productA, locationA, 10, 1)

	result, err := env.uc.Transfer(context.Background(), stock.TransferInput{
		ProductID:      productA,
		FromLocationID: locationA,
		ToLocationID:   locationB,
		UserID:         userTest,
		Quantity:       4,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6), result.FromQuantity)
	assert.Equal(t, int64(4), result.ToQuantity)
	assert.NotEmpty(t, result.BatchID)

	require.Len(t, env.ledger.entries, 2)
	out, in := env.ledger.entries[0], env.ledger.entries[1]
	assert.Equal(t, int64(-4), out.Delta)
	assert.Equal(t, locationA, out.LocationID)
	assert.Equal(t, int64(4), in.Delta)
	assert.Equal(t, locationB, in.LocationID)
	assert.Equal(t, entity.LogTypeTransfer, out.LogType)
	assert.Equal(t, entity.LogTypeTransfer, in.LogType)
	assert.Equal(t, result.BatchID, out.BatchID, "ambos asientos comparten batch")
	assert.Equal(t, result.BatchID, in.BatchID)
	assert.Equal(t, out.Note, in.Note, "ambos asientos llevan la misma nota")
	assert.Contains(t, out.Note, "Bodega "+locationA)
	assert.Contains(t, out.Note, "Bodega "+locationB)
}

// Con 5 unidades en origen, trasladar 8 falla con faltante 3 y cero escrituras.
func TestTransfer_StockInsuficienteNoEscribeNada(t *testing.T) {
	env := newTransferEnv()
	env.stockRepo.seed(productA, locationA, 5, 1)

	_, err := env.uc.Transfer(context.Background(), stock.TransferInput{
		ProductID:      productA,
		FromLocationID: locationA,
		ToLocationID:   locationB,
		Quantity:       8,
	})
	require.Error(t, err)

	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, int64(5), insufficientErr.CurrentQuantity)
	assert.Equal(t, int64(3), insufficientErr.Shortfall)
	assert.Equal(t, int64(8), insufficientErr.Requested)

	origin, _ := env.stockRepo.Get(productA, locationA)
	assert.Equal(t, int64(5), origin.Quantity, "el origen no debe cambiar")
	dest, _ := env.stockRepo.Get(productA, locationB)
	assert.Nil(t, dest, "el destino no debe haberse creado")
	assert.Empty(t, env.ledger.entries, "el ledger debe quedar intacto")
}

// Origen igual a destino es entrada inválida.
func TestTransfer_MismoOrigenYDestino(t *testing.T) {
	env := newTransferEnv()
	env.stockRepo.seed(productA, locationA, 10, 1)

	_, err := env.uc.Transfer(context.Background(), stock.TransferInput{
		ProductID:      productA,
		FromLocationID: locationA,
		ToLocationID:   locationA,
		Quantity:       1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Versión de origen vencida (writer concurrente entre lectura y traslado)
// falla con conflicto y revierte la transacción completa.
func TestTransfer_VersionDeOrigenVencida(t *testing.T) {
	env := newTransferEnv()
	env.stockRepo.seed(productA, locationA, 10, 3)

	stale := int64(2)
	_, err := env.uc.Transfer(context.Background(), stock.TransferInput{
		ProductID:           productA,
		FromLocationID:      locationA,
		ToLocationID:        locationB,
		Quantity:            4,
		ExpectedFromVersion: &stale,
	})
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	origin, _ := env.stockRepo.Get(productA, locationA)
	assert.Equal(t, int64(10), origin.Quantity)
	assert.Equal(t, int64(3), origin.Version)
	assert.Empty(t, env.ledger.entries)
}

// Un fallo al acreditar el destino revierte también la deducción del origen:
// nunca queda stock "en el aire".
func TestTransfer_FalloEnDestinoRevierteOrigen(t *testing.T) {
	env := newTransferEnv()
	env.stockRepo.seed(productA, locationA, 10, 1)
	// La primera ApplyDelta (origen) pasa; la segunda (destino) falla.
	env.stockRepo.failOn = 2
	env.stockRepo.failErr = assert.AnError

	_, err := env.uc.Transfer(context.Background(), stock.TransferInput{
		ProductID:      productA,
		FromLocationID: locationA,
		ToLocationID:   locationB,
		Quantity:       4,
	})
	require.Error(t, err)

	origin, _ := env.stockRepo.Get(productA, locationA)
	assert.Equal(t, int64(10), origin.Quantity, "la deducción debe revertirse")
	assert.Empty(t, env.ledger.entries)
}

// El traslado conserva el total del producto entre ubicaciones.
func TestTransfer_ConservaElTotal(t *testing.T) {
	env := newTransferEnv()
	env.stockRepo.seed(productA, locationA, 12, 1)
	env.stockRepo.seed(productA, locationB, 8, 1)

	_, err := env.uc.Transfer(context.Background(), stock.TransferInput{
		ProductID:      productA,
		FromLocationID: locationA,
		ToLocationID:   locationB,
		Quantity:       5,
	})
	require.NoError(t, err)

	levels, _ := env.stockRepo.ListByProduct(productA)
	var total int64
	for _, l := range levels {
		total += l.Quantity
	}
	assert.Equal(t, int64(20), total, "el total del producto no debe cambiar")
}
