package allocation

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Get obtiene una asignación por ID.
func (uc *UseCase) Get(ctx context.Context, allocationID string) (*entity.Allocation, error) {
	if allocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Allocation
	err := uc.txRunner.RunAllocation(ctx, func(
		_ repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		_ repository.OrderFulfillmentRepository,
		_ repository.LotAdjustmentRepository,
		_ repository.ActivityLogRepository,
	) error {
		a, err := allocRepo.GetByID(ctx, allocationID)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByOrderItem lista las asignaciones de una línea de pedido.
func (uc *UseCase) ListByOrderItem(ctx context.Context, orderItemID string) ([]*entity.Allocation, error) {
	if orderItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out []*entity.Allocation
	err := uc.txRunner.RunAllocation(ctx, func(
		_ repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		_ repository.OrderFulfillmentRepository,
		_ repository.LotAdjustmentRepository,
		_ repository.ActivityLogRepository,
	) error {
		list, err := allocRepo.ListByOrderItem(ctx, orderItemID)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetFulfillment obtiene un cumplimiento por ID.
func (uc *UseCase) GetFulfillment(ctx context.Context, fulfillmentID string) (*entity.OrderFulfillment, error) {
	if fulfillmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.OrderFulfillment
	err := uc.txRunner.RunAllocation(ctx, func(
		_ repository.InventoryRecordRepository,
		_ repository.AllocationRepository,
		fulRepo repository.OrderFulfillmentRepository,
		_ repository.LotAdjustmentRepository,
		_ repository.ActivityLogRepository,
	) error {
		f, err := fulRepo.GetByID(ctx, fulfillmentID)
		if err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListFulfillments lista los cumplimientos de una asignación.
func (uc *UseCase) ListFulfillments(ctx context.Context, allocationID string) ([]*entity.OrderFulfillment, error) {
	if allocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out []*entity.OrderFulfillment
	err := uc.txRunner.RunAllocation(ctx, func(
		_ repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		fulRepo repository.OrderFulfillmentRepository,
		_ repository.LotAdjustmentRepository,
		_ repository.ActivityLogRepository,
	) error {
		if _, err := allocRepo.GetByID(ctx, allocationID); err != nil {
			return err
		}
		list, err := fulRepo.ListByAllocation(ctx, allocationID)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
