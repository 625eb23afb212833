package allocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/allocation"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

// confirmAlloc reserva qty contra item-1 y devuelve la asignación.
func confirmAlloc(t *testing.T, uc *allocation.UseCase, inventoryID string, qty int64) *entity.Allocation {
	t.Helper()
	alloc, err := uc.Confirm(context.Background(), allocation.ConfirmInput{
		OrderItemID: "item-1",
		InventoryID: inventoryID,
		Quantity:    decimal.NewFromInt(qty),
		ActorID:     "actor-1",
	})
	require.NoError(t, err)
	return alloc
}

func TestRecordShipment_ConvierteReservaEnSalida(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	ful, err := uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(20),
		ActorID:      "actor-1",
	})
	require.NoError(t, err)
	require.NotNil(t, ful)
	assert.Equal(t, entity.FulfillmentStatusShipped, ful.Status)
	assert.True(t, ful.QuantityShipped.Equal(decimal.NewFromInt(20)))

	// Existencia y reserva bajan juntas: 50-20=30 en mano, 0 reservado.
	after := store.record(rec.ID)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(30)))
	assert.True(t, after.ReservedQuantity.IsZero())

	// La asignación quedó enviada por completo.
	assert.Equal(t, entity.AllocationStatusCompleted, store.allocation(alloc.ID).Status)

	// Queda ajuste de salida y entrada del libro con delta negativo.
	adjs := store.adjustmentsFor(rec.ID)
	require.Len(t, adjs, 1)
	assert.Equal(t, entity.AdjustmentTypeShipment, adjs[0].AdjustmentTypeID)
	assert.True(t, adjs[0].PreviousQuantity.Equal(decimal.NewFromInt(50)))
	assert.True(t, adjs[0].NewQuantity.Equal(decimal.NewFromInt(30)))

	entries := store.entriesFor(rec.ID)
	require.Len(t, entries, 2) // reserva + salida
	salida := entries[1]
	assert.Equal(t, entity.ActionTypeAllocationFulfilled, salida.ActionTypeID)
	assert.True(t, salida.QuantityChange.Equal(decimal.NewFromInt(-20)))
	assert.True(t, salida.PreviousQuantity.Equal(decimal.NewFromInt(50)))
	assert.True(t, salida.NewQuantity.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, ful.ID, salida.Metadata["fulfillment_id"])

	sums := ledger.NewChecksumService()
	for _, e := range entries {
		ok, err := sums.Verify(e)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRecordShipment_EnDosPartesCompleta(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	for i, qty := range []int64{12, 8} {
		_, err := uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
			OrderItemID:  "item-1",
			AllocationID: alloc.ID,
			ShipmentID:   []string{"ship-1", "ship-2"}[i],
			Quantity:     decimal.NewFromInt(qty),
			ActorID:      "actor-1",
		})
		require.NoError(t, err)
	}

	after := store.record(rec.ID)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(30)))
	assert.True(t, after.ReservedQuantity.IsZero())
	assert.Equal(t, entity.AllocationStatusCompleted, store.allocation(alloc.ID).Status)
}

func TestRecordShipment_RechazaSobreEnvio(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	_, err := uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(15),
		ActorID:      "actor-1",
	})
	require.NoError(t, err)

	// 15 + 10 > 20 asignadas.
	_, err = uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-2",
		Quantity:     decimal.NewFromInt(10),
		ActorID:      "actor-1",
	})
	require.ErrorIs(t, err, domain.ErrOverShipment)

	// El intento fallido no movió nada.
	after := store.record(rec.ID)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(35)))
	assert.True(t, after.ReservedQuantity.Equal(decimal.NewFromInt(5)))
}

func TestRecordShipment_RechazaContraAsignacionCompletada(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	_, err := uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(20),
		ActorID:      "actor-1",
	})
	require.NoError(t, err)

	_, err = uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-2",
		Quantity:     decimal.NewFromInt(1),
		ActorID:      "actor-1",
	})
	assert.ErrorIs(t, err, domain.ErrOverShipment)
}

func TestRecordShipment_RechazaLineaEquivocada(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	_, err := uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
		OrderItemID:  "item-otro",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(5),
		ActorID:      "actor-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordShipment_ReintentoMismoEnvioNoDuplica(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	input := allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(20),
		ActorID:      "actor-1",
	}
	primero, err := uc.RecordShipment(context.Background(), input)
	require.NoError(t, err)

	// Mismo envío otra vez (reintento tras timeout del llamador).
	segundo, err := uc.RecordShipment(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, primero.ID, segundo.ID)

	after := store.record(rec.ID)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(30)), "la salida se descontó una sola vez")

	// Mismo envío con otra cantidad sí es conflicto.
	input.Quantity = decimal.NewFromInt(9)
	_, err = uc.RecordShipment(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPlanShipment_FlujoPlaneadoEmpacadoEnviado(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	planned, err := uc.PlanShipment(context.Background(), allocation.PlanShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(20),
		ActorID:      "actor-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FulfillmentStatusPending, planned.Status)

	// Planear no mueve inventario.
	assert.True(t, store.record(rec.ID).Quantity.Equal(decimal.NewFromInt(50)))
	assert.Len(t, store.entriesFor(rec.ID), 1) // solo la reserva

	packed, err := uc.MarkPacked(context.Background(), planned.ID, "actor-2")
	require.NoError(t, err)
	assert.Equal(t, entity.FulfillmentStatusPacked, packed.Status)

	shipped, err := uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(20),
		ActorID:      "actor-2",
	})
	require.NoError(t, err)

	// El envío transiciona el cumplimiento planeado, no crea otro.
	assert.Equal(t, planned.ID, shipped.ID)
	assert.Equal(t, entity.FulfillmentStatusShipped, shipped.Status)

	after := store.record(rec.ID)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(30)))
	assert.True(t, after.ReservedQuantity.IsZero())
	assert.Equal(t, entity.AllocationStatusCompleted, store.allocation(alloc.ID).Status)
}

func TestPlanShipment_AcotaElCompromiso(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	_, err := uc.PlanShipment(context.Background(), allocation.PlanShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(15),
		ActorID:      "actor-1",
	})
	require.NoError(t, err)

	// 15 planeadas + 10 nuevas > 20 asignadas.
	_, err = uc.PlanShipment(context.Background(), allocation.PlanShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-2",
		Quantity:     decimal.NewFromInt(10),
		ActorID:      "actor-1",
	})
	assert.ErrorIs(t, err, domain.ErrOverShipment)
}

func TestMarkDelivered_PromueveLaAsignacion(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	var fuls []*entity.OrderFulfillment
	for i, qty := range []int64{12, 8} {
		ful, err := uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
			OrderItemID:  "item-1",
			AllocationID: alloc.ID,
			ShipmentID:   []string{"ship-1", "ship-2"}[i],
			Quantity:     decimal.NewFromInt(qty),
			ActorID:      "actor-1",
		})
		require.NoError(t, err)
		fuls = append(fuls, ful)
	}
	require.Equal(t, entity.AllocationStatusCompleted, store.allocation(alloc.ID).Status)

	// Con una sola entrega la asignación sigue COMPLETED.
	_, err := uc.MarkDelivered(context.Background(), fuls[0].ID, "actor-3")
	require.NoError(t, err)
	assert.Equal(t, entity.AllocationStatusCompleted, store.allocation(alloc.ID).Status)

	// Con la segunda queda FULFILLED.
	_, err = uc.MarkDelivered(context.Background(), fuls[1].ID, "actor-3")
	require.NoError(t, err)
	assert.Equal(t, entity.AllocationStatusFulfilled, store.allocation(alloc.ID).Status)
}

func TestMarkReturned_NoPromueveNiReingresa(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	ful, err := uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(20),
		ActorID:      "actor-1",
	})
	require.NoError(t, err)

	returned, err := uc.MarkReturned(context.Background(), ful.ID, "actor-3")
	require.NoError(t, err)
	assert.Equal(t, entity.FulfillmentStatusReturned, returned.Status)

	// La devolución no reingresa cantidades ni promueve la asignación.
	assert.True(t, store.record(rec.ID).Quantity.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, entity.AllocationStatusCompleted, store.allocation(alloc.ID).Status)

	_, err = uc.MarkDelivered(context.Background(), ful.ID, "actor-3")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestMarkPacked_SoloDesdePendiente(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	ful, err := uc.RecordShipment(context.Background(), allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(20),
		ActorID:      "actor-1",
	})
	require.NoError(t, err)

	_, err = uc.MarkPacked(context.Background(), ful.ID, "actor-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRecordShipment_ReintentoPorMarcaLogica(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	marca := time.Date(2025, 5, 10, 16, 0, 0, 0, time.UTC)
	input := allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(20),
		ActorID:      "actor-1",
		RecordedAt:   marca,
	}

	primero, err := uc.RecordShipment(context.Background(), input)
	require.NoError(t, err)
	segundo, err := uc.RecordShipment(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, primero.ID, segundo.ID)

	// Un solo asiento de salida en el libro.
	entries := store.entriesFor(rec.ID)
	salidas := 0
	for _, e := range entries {
		if e.ActionTypeID == entity.ActionTypeAllocationFulfilled {
			salidas++
		}
	}
	assert.Equal(t, 1, salidas)
}

// TestRecordShipment_MarcaConNanosegundosNoCorrompe: la marca del envío puede
// traer nanosegundos, pero almacenada como TIMESTAMPTZ queda en microsegundos.
// El reintento con la marca original debe reconocer la misma operación y toda
// huella debe verificar sobre lo que realmente quedó en la base.
func TestRecordShipment_MarcaConNanosegundosNoCorrompe(t *testing.T) {
	store, uc := newEnv()
	rec := store.seedRecord("inv-1", 50, 0)
	alloc := confirmAlloc(t, uc, rec.ID, 20)

	marca := time.Date(2025, 5, 10, 16, 0, 0, 987654321, time.UTC)
	input := allocation.RecordShipmentInput{
		OrderItemID:  "item-1",
		AllocationID: alloc.ID,
		ShipmentID:   "ship-1",
		Quantity:     decimal.NewFromInt(20),
		ActorID:      "actor-1",
		RecordedAt:   marca,
	}

	primero, err := uc.RecordShipment(context.Background(), input)
	require.NoError(t, err)

	segundo, err := uc.RecordShipment(context.Background(), input)
	require.NoError(t, err, "el reintento con la marca original no debe reportar corrupción")
	assert.Equal(t, primero.ID, segundo.ID)

	after := store.record(rec.ID)
	assert.True(t, after.Quantity.Equal(decimal.NewFromInt(30)), "la salida se descontó una sola vez")

	// La huella de cada asiento verifica tal como quedó almacenado.
	sums := ledger.NewChecksumService()
	for _, e := range store.entriesFor(rec.ID) {
		ok, err := sums.Verify(e)
		require.NoError(t, err)
		assert.True(t, ok, "el asiento %s debe verificar", e.ActionTypeID)
	}
}
