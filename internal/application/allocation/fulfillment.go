package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// MarkPacked marca el cumplimiento como empacado (evento de bodega previo al
// despacho). No mueve inventario.
func (uc *UseCase) MarkPacked(ctx context.Context, fulfillmentID, actorID string) (*entity.OrderFulfillment, error) {
	return uc.transitionFulfillment(ctx, fulfillmentID, actorID, entity.FulfillmentStatusPacked)
}

// MarkDelivered marca el cumplimiento como entregado. Cuando con esta entrega
// la asignación completada queda entregada en su totalidad, pasa a FULFILLED.
func (uc *UseCase) MarkDelivered(ctx context.Context, fulfillmentID, actorID string) (*entity.OrderFulfillment, error) {
	return uc.transitionFulfillment(ctx, fulfillmentID, actorID, entity.FulfillmentStatusDelivered)
}

// MarkReturned marca el cumplimiento como devuelto. No reingresa cantidades:
// el reingreso físico de la mercancía se asienta aparte como ajuste RETURNED.
func (uc *UseCase) MarkReturned(ctx context.Context, fulfillmentID, actorID string) (*entity.OrderFulfillment, error) {
	return uc.transitionFulfillment(ctx, fulfillmentID, actorID, entity.FulfillmentStatusReturned)
}

func (uc *UseCase) transitionFulfillment(ctx context.Context, fulfillmentID, actorID, target string) (*entity.OrderFulfillment, error) {
	if fulfillmentID == "" || actorID == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.OrderFulfillment
	err := uc.run(ctx, "transition_fulfillment", func(
		_ repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		fulRepo repository.OrderFulfillmentRepository,
		_ repository.LotAdjustmentRepository,
		_ repository.ActivityLogRepository,
	) error {
		result = nil
		ful, err := fulRepo.GetByID(ctx, fulfillmentID)
		if err != nil {
			return err
		}
		if ful.Status == target {
			// Reintento de la misma transición.
			result = ful
			return nil
		}
		if !ful.CanTransitionTo(target) {
			return fmt.Errorf("cumplimiento %s en estado %s no puede pasar a %s: %w",
				ful.ID, ful.Status, target, domain.ErrInvalidTransition)
		}
		ful.Status = target
		ful.UpdatedAt = time.Now().UTC()
		if err := fulRepo.Update(ctx, ful); err != nil {
			return err
		}

		if target == entity.FulfillmentStatusDelivered {
			if err := uc.promoteIfDelivered(ctx, allocRepo, fulRepo, ful.AllocationID); err != nil {
				return err
			}
		}
		result = ful
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// promoteIfDelivered pasa la asignación COMPLETED a FULFILLED cuando todos
// sus cumplimientos no cancelados están entregados.
func (uc *UseCase) promoteIfDelivered(
	ctx context.Context,
	allocRepo repository.AllocationRepository,
	fulRepo repository.OrderFulfillmentRepository,
	allocationID string,
) error {
	alloc, err := allocRepo.GetByIDForUpdate(ctx, allocationID)
	if err != nil {
		return err
	}
	if !alloc.CanTransitionTo(entity.AllocationStatusFulfilled) {
		return nil
	}
	fuls, err := fulRepo.ListByAllocation(ctx, allocationID)
	if err != nil {
		return err
	}
	for _, f := range fuls {
		if f.Status == entity.FulfillmentStatusCancelled {
			continue
		}
		if f.Status != entity.FulfillmentStatusDelivered {
			return nil
		}
	}
	alloc.Status = entity.AllocationStatusFulfilled
	alloc.UpdatedAt = time.Now().UTC()
	return allocRepo.Update(ctx, alloc)
}
