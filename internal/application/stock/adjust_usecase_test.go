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

const (
	productA  = "11111111-1111-4111-8111-111111111111"
	locationA = "22222222-2222-4222-8222-222222222222"
	locationB = "33333333-3333-4333-8333-333333333333"
	locationC = "44444444-4444-4444-8444-444444444444"
	userTest  = "55555555-5555-4555-8555-555555555555"
)

type adjustEnv struct {
	stockRepo *memStockRepo
	ledger    *memLedgerRepo
	uc        *stock.AdjustUseCase
}

func newAdjustEnv() *adjustEnv {
	stockRepo := newMemStockRepo()
	ledger := newMemLedgerRepo()
	runner := &memTxRunner{stock: stockRepo, ledger: ledger}
	uc := stock.NewAdjustUseCase(runner, newMemProductRepo(productA), newMemLocationRepo(locationA, locationB), nil)
	return &adjustEnv{stockRepo: stockRepo, ledger: ledger, uc: uc}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes
// ──────────────────────────────────────────────────────────────────────────────

// Primer ajuste positivo: crea la fila con version 1 y deja un asiento.
func TestAdjust_EntradaInicialCreaFila(t *testing.T) {
	env := newAdjustEnv()

	result, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
		ProductID:  productA,
		LocationID: locationA,
		UserID:     userTest,
		Delta:      10,
		Note:       "carga inicial",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), result.NewQuantity)
	assert.Equal(t, int64(1), result.NewVersion)

	require.Len(t, env.ledger.entries, 1)
	entry := env.ledger.entries[0]
	assert.Equal(t, int64(10), entry.Delta)
	assert.Equal(t, entity.LogTypeAdjustment, entry.LogType)
	assert.Equal(t, userTest, entry.UserID)
	assert.Equal(t, "carga inicial", entry.Note)
}

// Cada ajuste incrementa la versión en exactamente 1.
func TestAdjust_VersionMonotonicaPorMutacion(t *testing.T) {
	env := newAdjustEnv()

	for i := 1; i <= 5; i++ {
		result, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
			ProductID:  productA,
			LocationID: locationA,
			UserID:     userTest,
			Delta:      2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i), result.NewVersion, "la versión debe crecer de a 1 por mutación")
	}
}

// Delta cero es entrada inválida.
func TestAdjust_DeltaCeroEsInvalido(t *testing.T) {
	env := newAdjustEnv()

	_, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
		ProductID:  productA,
		LocationID: locationA,
		Delta:      0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Salida que dejaría la cantidad negativa falla con el error tipado, y no
// escribe nada (ni caché ni ledger).
func TestAdjust_SalidaSinStockFallaSinEscribir(t *testing.T) {
	env := newAdjustEnv()
	env.stockRepo.seed(productA, locationA, 5, 1)

	_, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
		ProductID:  productA,
		LocationID: locationA,
		Delta:      -8,
	})
	require.Error(t, err)

	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, int64(5), insufficientErr.CurrentQuantity)
	assert.Equal(t, int64(3), insufficientErr.Shortfall)

	level, _ := env.stockRepo.Get(productA, locationA)
	assert.Equal(t, int64(5), level.Quantity, "la cantidad no debe cambiar")
	assert.Equal(t, int64(1), level.Version, "la versión no debe cambiar")
	assert.Empty(t, env.ledger.entries, "no debe quedar asiento en el ledger")
}

// Con AllowNegative la corrección puede dejar la cantidad bajo cero.
func TestAdjust_AllowNegativePermiteBajoCero(t *testing.T) {
	env := newAdjustEnv()
	env.stockRepo.seed(productA, locationA, 5, 1)

	result, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
		ProductID:     productA,
		LocationID:    locationA,
		Delta:         -8,
		AllowNegative: true,
		Note:          "corrección de conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), result.NewQuantity)
}

// ExpectedVersion vencida falla con conflicto de versión, distinguible de
// stock insuficiente, y sin efectos.
func TestAdjust_VersionVencidaFallaConConflicto(t *testing.T) {
	env := newAdjustEnv()
	env.stockRepo.seed(productA, locationA, 50, 7)

	stale := int64(6)
	_, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
		ProductID:       productA,
		LocationID:      locationA,
		Delta:           -10,
		ExpectedVersion: &stale,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	level, _ := env.stockRepo.Get(productA, locationA)
	assert.Equal(t, int64(50), level.Quantity)
	assert.Equal(t, int64(7), level.Version)
	assert.Empty(t, env.ledger.entries)
}

// Tras el conflicto, releer y reintentar con la versión vigente debe pasar.
func TestAdjust_ReintentoConVersionVigente(t *testing.T) {
	env := newAdjustEnv()
	env.stockRepo.seed(productA, locationA, 50, 7)

	stale := int64(6)
	_, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
		ProductID:       productA,
		LocationID:      locationA,
		Delta:           -10,
		ExpectedVersion: &stale,
	})
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	level, _ := env.stockRepo.Get(productA, locationA)
	fresh := level.Version
	result, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
		ProductID:       productA,
		LocationID:      locationA,
		Delta:           -10,
		ExpectedVersion: &fresh,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), result.NewQuantity)
	assert.Equal(t, int64(8), result.NewVersion)
}

// Producto inexistente falla con not found antes de tocar nada.
func TestAdjust_ProductoInexistente(t *testing.T) {
	env := newAdjustEnv()

	_, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
		ProductID:  "99999999-9999-4999-8999-999999999999",
		LocationID: locationA,
		Delta:      5,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, env.ledger.entries)
}

// La suma de deltas del ledger siempre reproduce la cantidad en caché.
func TestAdjust_LedgerReproduceCantidad(t *testing.T) {
	env := newAdjustEnv()

	deltas := []int64{10, -3, 7, -5, 20}
	for _, d := range deltas {
		_, err := env.uc.Adjust(context.Background(), stock.AdjustInput{
			ProductID:     productA,
			LocationID:    locationA,
			Delta:         d,
			AllowNegative: true,
		})
		require.NoError(t, err)
	}

	sum, err := env.ledger.SumDeltas(productA, locationA)
	require.NoError(t, err)
	level, _ := env.stockRepo.Get(productA, locationA)
	assert.Equal(t, level.Quantity, sum, "reproducir el ledger debe dar la cantidad en caché")
	assert.Equal(t, int64(29), sum)
}
