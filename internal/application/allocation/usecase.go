package allocation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/txretry"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// UseCase coordina reservas de inventario contra líneas de pedido y su
// cumplimiento por envíos. La reserva aparta cantidad sin retirarla; solo el
// envío la convierte en salida. Cada operación corre en una transacción con
// la fila de inventario bloqueada y asienta su entrada del libro.
type UseCase struct {
	txRunner TxRunner
	recorder *ledger.Recorder
	retry    txretry.Policy
	log      *logger.Logger
}

// New construye el coordinador de asignaciones.
func New(txRunner TxRunner, recorder *ledger.Recorder, retry txretry.Policy, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, recorder: recorder, retry: retry, log: log}
}

// run ejecuta op dentro de una transacción con reintento acotado ante
// conflictos transitorios.
func (uc *UseCase) run(ctx context.Context, name string, op func(
	invRepo repository.InventoryRecordRepository,
	allocRepo repository.AllocationRepository,
	fulRepo repository.OrderFulfillmentRepository,
	adjRepo repository.LotAdjustmentRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	return uc.retry.Do(ctx, uc.log, name, func() error {
		return uc.txRunner.RunAllocation(ctx, op)
	})
}

// logicalTime fija la marca lógica de la operación antes del primer intento:
// los reintentos (internos o del llamador) repiten la misma marca y el libro
// los reconoce como la misma operación. La marca se canonicaliza a la
// resolución de almacenamiento (ledger.CanonicalTime) para que no cambie al
// viajar por la base.
func logicalTime(at time.Time) time.Time {
	if at.IsZero() {
		at = time.Now()
	}
	return ledger.CanonicalTime(at)
}

// reservationEntry arma una entrada del libro para eventos de reserva:
// la cantidad en existencia no cambia (la reserva aparta, no retira), por lo
// que el delta es cero y antes/después coinciden.
func reservationEntry(rec *entity.InventoryRecord, actionTypeID, actorID string, meta map[string]any, at time.Time) *entity.ActivityLogEntry {
	return &entity.ActivityLogEntry{
		Inventory:        rec.Ref(),
		ActionTypeID:     actionTypeID,
		PreviousQuantity: rec.Quantity,
		QuantityChange:   decimal.Zero,
		NewQuantity:      rec.Quantity,
		StatusID:         rec.StatusID,
		ActorID:          actorID,
		Metadata:         meta,
		RecordedAt:       at,
	}
}

// fulfillmentShipped dice si el cumplimiento ya salió físicamente.
func fulfillmentShipped(f *entity.OrderFulfillment) bool {
	switch f.Status {
	case entity.FulfillmentStatusShipped, entity.FulfillmentStatusDelivered, entity.FulfillmentStatusReturned:
		return true
	}
	return false
}

// shippedByAllocation totaliza lo que ya salió físicamente de una asignación.
func shippedByAllocation(ctx context.Context, fulRepo repository.OrderFulfillmentRepository, allocationID string) (decimal.Decimal, []*entity.OrderFulfillment, error) {
	fuls, err := fulRepo.ListByAllocation(ctx, allocationID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	total := decimal.Zero
	for _, f := range fuls {
		if fulfillmentShipped(f) {
			total = total.Add(f.QuantityShipped)
		}
	}
	return total, fuls, nil
}

// committedByAllocation totaliza lo comprometido en envíos de una asignación:
// cumplimientos planeados y enviados, excluyendo cancelados. Es la medida que
// acotan los controles de sobre-envío.
func committedByAllocation(fuls []*entity.OrderFulfillment, exceptID string) decimal.Decimal {
	total := decimal.Zero
	for _, f := range fuls {
		if f.ID == exceptID || f.Status == entity.FulfillmentStatusCancelled {
			continue
		}
		total = total.Add(f.QuantityShipped)
	}
	return total
}

// allocatedByOrderItem totaliza lo apartado para una línea de pedido en todas
// sus asignaciones no canceladas.
func allocatedByOrderItem(ctx context.Context, allocRepo repository.AllocationRepository, orderItemID string) (decimal.Decimal, error) {
	allocs, err := allocRepo.ListByOrderItem(ctx, orderItemID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range allocs {
		if a.Status == entity.AllocationStatusCancelled {
			continue
		}
		total = total.Add(a.AllocatedQuantity)
	}
	return total, nil
}
