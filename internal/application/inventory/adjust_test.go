package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/application/txretry"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

func testRetry() txretry.Policy {
	return txretry.Policy{MaxAttempts: 3, Backoff: time.Millisecond}
}

func newAdjustEnv() (*fakeStore, *inventory.AdjustUseCase) {
	store := newFakeStore()
	uc := inventory.NewAdjustUseCase(
		store,
		newFakeAdjTypeRepo(
			entity.AdjustmentTypeDamaged,
			entity.AdjustmentTypeLost,
			entity.AdjustmentTypeCorrection,
		),
		ledger.NewRecorder(),
		testRetry(),
		testLogger(),
	)
	return store, uc
}

func TestAdjustUseCase_AjusteNegativoCompleto(t *testing.T) {
	store, uc := newAdjustEnv()
	rec := store.seedRecord("inv-100", 100, 0)

	adj, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		InventoryID:      rec.ID,
		AdjustmentTypeID: entity.AdjustmentTypeDamaged,
		Delta:            decimal.NewFromInt(-12),
		ActorID:          "actor-1",
		Comment:          "pallet dañado en recepción",
	})
	require.NoError(t, err)
	require.NotNil(t, adj)

	// El ajuste refleja antes / delta / después.
	assert.True(t, adj.PreviousQuantity.Equal(decimal.NewFromInt(100)))
	assert.True(t, adj.AdjustedQuantity.Equal(decimal.NewFromInt(-12)))
	assert.True(t, adj.NewQuantity.Equal(decimal.NewFromInt(88)))

	// La fila quedó en 88.
	after, err := store.invRepo().GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(88)))

	// Una sola entrada del libro, con huella que verifica.
	entries, err := store.logRepo().ListByInventory(context.Background(), after.Ref(), nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, entity.ActionTypeAdjustment, e.ActionTypeID)
	assert.True(t, e.QuantityChange.Equal(decimal.NewFromInt(-12)))
	ok, err := ledger.NewChecksumService().Verify(e)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, adj.ID, e.Metadata["adjustment_id"])
}

func TestAdjustUseCase_RechazaSobregiroSinEscribirNada(t *testing.T) {
	store, uc := newAdjustEnv()
	rec := store.seedRecord("inv-5", 5, 0)

	_, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		InventoryID:      rec.ID,
		AdjustmentTypeID: entity.AdjustmentTypeLost,
		Delta:            decimal.NewFromInt(-10),
		ActorID:          "actor-1",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	// Nada quedó escrito: ni cantidad, ni ajuste, ni entrada del libro.
	after, err := store.invRepo().GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(5)))

	adjs, err := store.adjRepo().ListByInventory(context.Background(), rec.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, adjs)

	total, err := store.logRepo().CountByInventory(context.Background(), after.Ref(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAdjustUseCase_ValidaEntrada(t *testing.T) {
	store, uc := newAdjustEnv()
	rec := store.seedRecord("inv-1", 10, 0)

	casos := []struct {
		nombre string
		input  inventory.AdjustInput
		quiere error
	}{
		{
			nombre: "delta cero",
			input: inventory.AdjustInput{
				InventoryID:      rec.ID,
				AdjustmentTypeID: entity.AdjustmentTypeDamaged,
				Delta:            decimal.Zero,
				ActorID:          "actor-1",
			},
			quiere: domain.ErrZeroDelta,
		},
		{
			nombre: "tipo de ajuste desconocido",
			input: inventory.AdjustInput{
				InventoryID:      rec.ID,
				AdjustmentTypeID: "NO_EXISTE",
				Delta:            decimal.NewFromInt(1),
				ActorID:          "actor-1",
			},
			quiere: domain.ErrInvalidInput,
		},
		{
			nombre: "sin actor",
			input: inventory.AdjustInput{
				InventoryID:      rec.ID,
				AdjustmentTypeID: entity.AdjustmentTypeDamaged,
				Delta:            decimal.NewFromInt(1),
			},
			quiere: domain.ErrInvalidInput,
		},
		{
			nombre: "sin inventario",
			input: inventory.AdjustInput{
				AdjustmentTypeID: entity.AdjustmentTypeDamaged,
				Delta:            decimal.NewFromInt(1),
				ActorID:          "actor-1",
			},
			quiere: domain.ErrInvalidInput,
		},
	}

	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := uc.Adjust(context.Background(), c.input)
			assert.ErrorIs(t, err, c.quiere)
		})
	}
}

func TestAdjustUseCase_InventarioInexistente(t *testing.T) {
	_, uc := newAdjustEnv()

	_, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		InventoryID:      "no-existe",
		AdjustmentTypeID: entity.AdjustmentTypeDamaged,
		Delta:            decimal.NewFromInt(-1),
		ActorID:          "actor-1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustUseCase_ReintentoExternoNoDuplica(t *testing.T) {
	store, uc := newAdjustEnv()
	rec := store.seedRecord("inv-100", 100, 0)

	// El reintento repite la misma marca lógica que el primer intento.
	marca := time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)
	input := inventory.AdjustInput{
		InventoryID:      rec.ID,
		AdjustmentTypeID: entity.AdjustmentTypeCorrection,
		Delta:            decimal.NewFromInt(-12),
		ActorID:          "actor-1",
		RecordedAt:       marca,
	}

	primero, err := uc.Adjust(context.Background(), input)
	require.NoError(t, err)

	segundo, err := uc.Adjust(context.Background(), input)
	require.NoError(t, err)

	// Mismo ajuste, sin segundo asiento ni segundo cambio de cantidad.
	assert.Equal(t, primero.ID, segundo.ID)
	assert.True(t, segundo.NewQuantity.Equal(decimal.NewFromInt(88)))

	after, err := store.invRepo().GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(88)))

	total, err := store.logRepo().CountByInventory(context.Background(), after.Ref(), nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

// TestAdjustUseCase_MarcaConNanosegundosNoDuplicaNiCorrompe: la marca lógica
// llega del llamador con la precisión que traiga, pero TIMESTAMPTZ la
// almacena en microsegundos. El reintento con la marca original debe
// reconocerse como la misma operación y la huella de la fila leída debe
// verificar — nunca ErrLedgerIntegrity por precisión perdida.
func TestAdjustUseCase_MarcaConNanosegundosNoDuplicaNiCorrompe(t *testing.T) {
	store, uc := newAdjustEnv()
	rec := store.seedRecord("inv-100", 100, 0)

	marca := time.Date(2025, 4, 2, 10, 30, 0, 123456789, time.UTC)
	input := inventory.AdjustInput{
		InventoryID:      rec.ID,
		AdjustmentTypeID: entity.AdjustmentTypeCorrection,
		Delta:            decimal.NewFromInt(-12),
		ActorID:          "actor-1",
		RecordedAt:       marca,
	}

	primero, err := uc.Adjust(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, primero.RecordedAt.Equal(marca.Truncate(time.Microsecond)),
		"la marca asentada debe quedar en la resolución de almacenamiento")

	segundo, err := uc.Adjust(context.Background(), input)
	require.NoError(t, err, "el reintento con la marca original no debe reportar corrupción")
	assert.Equal(t, primero.ID, segundo.ID)

	after, err := store.invRepo().GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(88)))

	// Una sola entrada pese al reintento, y su huella verifica tal como se lee.
	entries, err := store.logRepo().ListByInventory(context.Background(), after.Ref(), nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	ok, err := ledger.NewChecksumService().Verify(entries[0])
	require.NoError(t, err)
	assert.True(t, ok, "la huella debe verificar sobre la fila leída de la base")
}

func TestAdjustUseCase_LecturaObsoletaAgotaReintentos(t *testing.T) {
	store, uc := newAdjustEnv()
	rec := store.seedRecord("inv-100", 100, 0)

	esperada := decimal.NewFromInt(50) // la fila tiene 100
	_, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		InventoryID:      rec.ID,
		AdjustmentTypeID: entity.AdjustmentTypeDamaged,
		Delta:            decimal.NewFromInt(-1),
		ActorID:          "actor-1",
		ExpectedPrevious: &esperada,
	})
	require.ErrorIs(t, err, domain.ErrTxRetryExhausted)

	// La fila no cambió en ningún intento.
	after, err := store.invRepo().GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(100)))
}

func TestAdjustUseCase_CantidadEsperadaVigentePasa(t *testing.T) {
	store, uc := newAdjustEnv()
	rec := store.seedRecord("inv-100", 100, 0)

	esperada := decimal.NewFromInt(100)
	adj, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		InventoryID:      rec.ID,
		AdjustmentTypeID: entity.AdjustmentTypeDamaged,
		Delta:            decimal.NewFromInt(-12),
		ActorID:          "actor-1",
		ExpectedPrevious: &esperada,
	})
	require.NoError(t, err)
	assert.True(t, adj.NewQuantity.Equal(decimal.NewFromInt(88)))
}

func TestAdjustUseCase_ConcurrentesConvergen(t *testing.T) {
	store, uc := newAdjustEnv()
	rec := store.seedRecord("inv-10", 10, 0)

	deltas := []int64{-5, 3}
	var wg sync.WaitGroup
	errs := make([]error, len(deltas))
	for i, d := range deltas {
		wg.Add(1)
		go func(i int, d int64) {
			defer wg.Done()
			_, errs[i] = uc.Adjust(context.Background(), inventory.AdjustInput{
				InventoryID:      rec.ID,
				AdjustmentTypeID: entity.AdjustmentTypeCorrection,
				Delta:            decimal.NewFromInt(d),
				ActorID:          "actor-1",
				RecordedAt:       time.Date(2025, 4, 2, 10, 0, int(i), 0, time.UTC),
			})
		}(i, d)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "ajuste %d", i)
	}

	// Converge a 10 - 5 + 3 = 8 sin importar el orden de llegada.
	after, err := store.invRepo().GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(8)), "quedó %s", after.Quantity)

	// Dos entradas encadenadas en algún orden total: la segunda parte de
	// donde terminó la primera.
	entries, err := store.logRepo().ListByInventory(context.Background(), after.Ref(), nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var primera, segunda *entity.ActivityLogEntry
	for _, e := range entries {
		if e.PreviousQuantity.Equal(decimal.NewFromInt(10)) {
			primera = e
		} else {
			segunda = e
		}
	}
	require.NotNil(t, primera)
	require.NotNil(t, segunda)
	assert.True(t, segunda.PreviousQuantity.Equal(primera.NewQuantity))
	assert.True(t, segunda.NewQuantity.Equal(decimal.NewFromInt(8)))

	sums := ledger.NewChecksumService()
	for _, e := range entries {
		ok, err := sums.Verify(e)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
