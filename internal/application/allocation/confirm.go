package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// ConfirmInput entrada para reservar inventario contra una línea de pedido.
// AllowPartial acepta una reserva menor a lo pedido cuando el disponible no
// alcanza; el faltante queda registrado, nunca se descuenta en silencio.
// RecordedAt es opcional: un reintento externo repite la misma marca lógica.
type ConfirmInput struct {
	OrderItemID  string
	InventoryID  string
	Quantity     decimal.Decimal
	AllowPartial bool
	ActorID      string
	RecordedAt   time.Time
}

// Confirm reserva cantidad disponible (existencia menos reservado) contra la
// línea de pedido. Con disponible insuficiente falla con
// ErrInsufficientAvailable, o aparta lo que haya si AllowPartial está activo
// (estado PARTIAL). La existencia no cambia: la reserva aparta, no retira.
func (uc *UseCase) Confirm(ctx context.Context, input ConfirmInput) (*entity.Allocation, error) {
	if input.OrderItemID == "" || input.InventoryID == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("la cantidad a reservar debe ser positiva: %w", domain.ErrInvalidInput)
	}
	recordedAt := logicalTime(input.RecordedAt)

	var result *entity.Allocation
	err := uc.run(ctx, "confirm_allocation", func(
		invRepo repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		_ repository.OrderFulfillmentRepository,
		_ repository.LotAdjustmentRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		result = nil
		alloc, err := uc.doConfirm(ctx, invRepo, allocRepo, logRepo, input, recordedAt)
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

func (uc *UseCase) doConfirm(
	ctx context.Context,
	invRepo repository.InventoryRecordRepository,
	allocRepo repository.AllocationRepository,
	logRepo repository.ActivityLogRepository,
	input ConfirmInput,
	recordedAt time.Time,
) (*entity.Allocation, error) {
	rec, err := invRepo.GetByIDForUpdate(ctx, input.InventoryID)
	if err != nil {
		return nil, err
	}

	// ¿Reserva ya asentada por un intento anterior?
	prev, err := uc.recorder.AlreadyRecorded(ctx, logRepo, rec.Ref(), entity.ActionTypeAllocationConfirmed, recordedAt)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		if id, ok := prev.Metadata["allocation_id"].(string); ok && id != "" {
			return allocRepo.GetByID(ctx, id)
		}
		return nil, fmt.Errorf("entrada previa sin allocation_id: %w", domain.ErrLedgerIntegrity)
	}

	available := rec.Available()
	if !available.IsPositive() {
		return nil, fmt.Errorf("disponible %s para %s solicitadas: %w",
			available, input.Quantity, domain.ErrInsufficientAvailable)
	}

	granted := input.Quantity
	status := entity.AllocationStatusConfirmed
	if available.LessThan(input.Quantity) {
		if !input.AllowPartial {
			return nil, fmt.Errorf("disponible %s para %s solicitadas: %w",
				available, input.Quantity, domain.ErrInsufficientAvailable)
		}
		granted = available
		status = entity.AllocationStatusPartial
	}

	if err := rec.Reserve(granted); err != nil {
		return nil, err
	}
	if err := invRepo.UpdateQuantities(ctx, rec); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	alloc := &entity.Allocation{
		ID:                uuid.New().String(),
		OrderItemID:       input.OrderItemID,
		InventoryID:       rec.ID,
		RequestedQuantity: input.Quantity,
		AllocatedQuantity: granted,
		Status:            status,
		ActorID:           input.ActorID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := allocRepo.Create(ctx, alloc); err != nil {
		return nil, err
	}

	entry := reservationEntry(rec, entity.ActionTypeAllocationConfirmed, input.ActorID, map[string]any{
		"allocation_id":  alloc.ID,
		"order_item_id":  alloc.OrderItemID,
		"requested":      input.Quantity.String(),
		"reserved_delta": granted.String(),
		"shortfall":      input.Quantity.Sub(granted).String(),
		"reserved_total": rec.ReservedQuantity.String(),
	}, recordedAt)
	if _, err := uc.recorder.Record(ctx, logRepo, entry); err != nil {
		return nil, err
	}
	return alloc, nil
}

// TopUpInput entrada para completar la reserva de una asignación parcial.
type TopUpInput struct {
	AllocationID string
	ActorID      string
	RecordedAt   time.Time
}

// TopUp intenta cubrir el faltante de una asignación PARTIAL con el
// disponible actual (reposición posterior, backorder). Si cubre todo el
// faltante la asignación pasa a CONFIRMED; si solo una parte, sigue PARTIAL
// con lo apartado acumulado.
func (uc *UseCase) TopUp(ctx context.Context, input TopUpInput) (*entity.Allocation, error) {
	if input.AllocationID == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	recordedAt := logicalTime(input.RecordedAt)

	var result *entity.Allocation
	err := uc.run(ctx, "topup_allocation", func(
		invRepo repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		_ repository.OrderFulfillmentRepository,
		_ repository.LotAdjustmentRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		result = nil
		alloc, err := uc.doTopUp(ctx, invRepo, allocRepo, logRepo, input, recordedAt)
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

func (uc *UseCase) doTopUp(
	ctx context.Context,
	invRepo repository.InventoryRecordRepository,
	allocRepo repository.AllocationRepository,
	logRepo repository.ActivityLogRepository,
	input TopUpInput,
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

	// ¿Reserva adicional ya asentada? Va antes del control de estado: el
	// reintento encuentra la asignación ya completada a CONFIRMED.
	prev, err := uc.recorder.AlreadyRecorded(ctx, logRepo, rec.Ref(), entity.ActionTypeAllocationConfirmed, recordedAt)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		return alloc, nil
	}

	if alloc.Status != entity.AllocationStatusPartial {
		return nil, fmt.Errorf("asignación %s en estado %s, solo PARTIAL admite completar reserva: %w",
			alloc.ID, alloc.Status, domain.ErrInvalidTransition)
	}

	shortfall := alloc.RequestedQuantity.Sub(alloc.AllocatedQuantity)
	available := rec.Available()
	if !available.IsPositive() {
		return nil, fmt.Errorf("disponible %s para faltante %s: %w",
			available, shortfall, domain.ErrInsufficientAvailable)
	}

	extra := shortfall
	if available.LessThan(shortfall) {
		extra = available
	}
	if err := rec.Reserve(extra); err != nil {
		return nil, err
	}
	if err := invRepo.UpdateQuantities(ctx, rec); err != nil {
		return nil, err
	}

	alloc.AllocatedQuantity = alloc.AllocatedQuantity.Add(extra)
	if alloc.AllocatedQuantity.Equal(alloc.RequestedQuantity) && alloc.CanTransitionTo(entity.AllocationStatusConfirmed) {
		alloc.Status = entity.AllocationStatusConfirmed
	}
	alloc.UpdatedAt = time.Now().UTC()
	if err := allocRepo.Update(ctx, alloc); err != nil {
		return nil, err
	}

	entry := reservationEntry(rec, entity.ActionTypeAllocationConfirmed, input.ActorID, map[string]any{
		"allocation_id":  alloc.ID,
		"order_item_id":  alloc.OrderItemID,
		"top_up":         true,
		"reserved_delta": extra.String(),
		"shortfall":      alloc.RequestedQuantity.Sub(alloc.AllocatedQuantity).String(),
		"reserved_total": rec.ReservedQuantity.String(),
	}, recordedAt)
	if _, err := uc.recorder.Record(ctx, logRepo, entry); err != nil {
		return nil, err
	}
	return alloc, nil
}
