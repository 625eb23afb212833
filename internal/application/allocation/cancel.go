package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// CancelInput entrada para cancelar una asignación.
type CancelInput struct {
	AllocationID string
	ActorID      string
	Reason       string
	RecordedAt   time.Time
}

// Cancel libera la reserva pendiente de la asignación (lo apartado menos lo
// ya enviado) y la deja en CANCELLED. Las salidas ya enviadas no se
// revierten: una devolución física se asienta aparte como ajuste RETURNED.
func (uc *UseCase) Cancel(ctx context.Context, input CancelInput) (*entity.Allocation, error) {
	if input.AllocationID == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	recordedAt := logicalTime(input.RecordedAt)

	var result *entity.Allocation
	err := uc.run(ctx, "cancel_allocation", func(
		invRepo repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		fulRepo repository.OrderFulfillmentRepository,
		_ repository.LotAdjustmentRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		result = nil
		alloc, err := uc.doCancel(ctx, invRepo, allocRepo, fulRepo, logRepo, input, recordedAt)
		if err != nil {
			return err
		}
		result = alloc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *UseCase) doCancel(
	ctx context.Context,
	invRepo repository.InventoryRecordRepository,
	allocRepo repository.AllocationRepository,
	fulRepo repository.OrderFulfillmentRepository,
	logRepo repository.ActivityLogRepository,
	input CancelInput,
	recordedAt time.Time,
) (*entity.Allocation, error) {
	alloc, err := allocRepo.GetByIDForUpdate(ctx, input.AllocationID)
	if err != nil {
		return nil, err
	}
	rec, err := invRepo.GetByIDForUpdate(ctx, alloc.InventoryID)
	if err != nil {
		return nil, err
	}

	// ¿Cancelación ya asentada por un intento anterior? Va antes del control
	// de estado: el reintento encuentra la asignación ya cancelada.
	prev, err := uc.recorder.AlreadyRecorded(ctx, logRepo, rec.Ref(), entity.ActionTypeAllocationCancelled, recordedAt)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		return alloc, nil
	}

	if !alloc.CanTransitionTo(entity.AllocationStatusCancelled) {
		return nil, fmt.Errorf("asignación %s en estado %s no admite cancelación: %w",
			alloc.ID, alloc.Status, domain.ErrInvalidTransition)
	}

	// Libera lo apartado que aún no salió por envío.
	shipped, _, err := shippedByAllocation(ctx, fulRepo, alloc.ID)
	if err != nil {
		return nil, err
	}
	release := alloc.AllocatedQuantity.Sub(shipped)
	if release.IsNegative() {
		release = decimal.Zero
	}
	if release.IsPositive() {
		if err := rec.ReleaseReservation(release); err != nil {
			return nil, err
		}
		if err := invRepo.UpdateQuantities(ctx, rec); err != nil {
			return nil, err
		}
	}

	alloc.Status = entity.AllocationStatusCancelled
	alloc.UpdatedAt = time.Now().UTC()
	if err := allocRepo.Update(ctx, alloc); err != nil {
		return nil, err
	}

	entry := reservationEntry(rec, entity.ActionTypeAllocationCancelled, input.ActorID, map[string]any{
		"allocation_id":  alloc.ID,
		"order_item_id":  alloc.OrderItemID,
		"released":       release.String(),
		"reserved_total": rec.ReservedQuantity.String(),
		"reason":         input.Reason,
	}, recordedAt)
	if _, err := uc.recorder.Record(ctx, logRepo, entry); err != nil {
		return nil, err
	}
	return alloc, nil
}
