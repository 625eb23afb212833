package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// PlanShipmentInput entrada para planear el envío de una línea asignada.
type PlanShipmentInput struct {
	OrderItemID  string
	AllocationID string
	ShipmentID   string
	Quantity     decimal.Decimal
	ActorID      string
}

// PlanShipment crea el cumplimiento en PENDING: compromete cantidad de la
// asignación con un envío sin mover inventario. El control de sobre-envío
// aplica desde aquí para que bodega no empaque lo que no está apartado.
func (uc *UseCase) PlanShipment(ctx context.Context, input PlanShipmentInput) (*entity.OrderFulfillment, error) {
	if input.OrderItemID == "" || input.AllocationID == "" || input.ShipmentID == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("la cantidad a enviar debe ser positiva: %w", domain.ErrInvalidInput)
	}

	var result *entity.OrderFulfillment
	err := uc.run(ctx, "plan_shipment", func(
		_ repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		fulRepo repository.OrderFulfillmentRepository,
		_ repository.LotAdjustmentRepository,
		_ repository.ActivityLogRepository,
	) error {
		result = nil
		alloc, err := lockAllocationForItem(ctx, allocRepo, input.AllocationID, input.OrderItemID)
		if err != nil {
			return err
		}
		if alloc.Status != entity.AllocationStatusConfirmed && alloc.Status != entity.AllocationStatusPartial {
			return fmt.Errorf("asignación %s en estado %s no admite planear envíos: %w",
				alloc.ID, alloc.Status, domain.ErrInvalidTransition)
		}

		fuls, err := fulRepo.ListByAllocation(ctx, alloc.ID)
		if err != nil {
			return err
		}
		if existing := findByShipment(fuls, input.ShipmentID); existing != nil {
			if existing.QuantityShipped.Equal(input.Quantity) && !existing.IsTerminal() {
				result = existing
				return nil
			}
			return fmt.Errorf("el envío %s ya tiene cumplimiento para la línea %s: %w",
				input.ShipmentID, input.OrderItemID, domain.ErrConflict)
		}

		if err := uc.checkOverShipment(ctx, allocRepo, fulRepo, alloc, fuls, "", input.Quantity); err != nil {
			return err
		}

		now := time.Now().UTC()
		ful := &entity.OrderFulfillment{
			ID:              uuid.New().String(),
			OrderItemID:     input.OrderItemID,
			AllocationID:    alloc.ID,
			ShipmentID:      input.ShipmentID,
			QuantityShipped: input.Quantity,
			Status:          entity.FulfillmentStatusPending,
			ActorID:         input.ActorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := fulRepo.Create(ctx, ful); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return fmt.Errorf("el envío %s ya tiene cumplimiento para la línea %s: %w",
					input.ShipmentID, input.OrderItemID, domain.ErrConflict)
			}
			return err
		}
		result = ful
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordShipmentInput entrada para registrar la salida física de un envío.
// RecordedAt es opcional: un reintento externo repite la misma marca lógica.
type RecordShipmentInput struct {
	OrderItemID  string
	AllocationID string
	ShipmentID   string
	Quantity     decimal.Decimal
	ActorID      string
	RecordedAt   time.Time
}

// RecordShipment asienta la salida física: transiciona el cumplimiento a
// SHIPPED (creándolo si el envío no fue planeado), descuenta la cantidad de
// la existencia y de la reserva, y deja ajuste y entrada del libro. El envío
// acumulado de la línea nunca puede superar lo asignado (ErrOverShipment).
// Cuando la asignación queda enviada por completo pasa a COMPLETED.
func (uc *UseCase) RecordShipment(ctx context.Context, input RecordShipmentInput) (*entity.OrderFulfillment, error) {
	if input.OrderItemID == "" || input.AllocationID == "" || input.ShipmentID == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("la cantidad enviada debe ser positiva: %w", domain.ErrInvalidInput)
	}
	recordedAt := logicalTime(input.RecordedAt)

	var result *entity.OrderFulfillment
	err := uc.run(ctx, "record_shipment", func(
		invRepo repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		fulRepo repository.OrderFulfillmentRepository,
		adjRepo repository.LotAdjustmentRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		result = nil
		ful, err := uc.doRecordShipment(ctx, invRepo, allocRepo, fulRepo, adjRepo, logRepo, input, recordedAt)
		if err != nil {
			return err
		}
		result = ful
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *UseCase) doRecordShipment(
	ctx context.Context,
	invRepo repository.InventoryRecordRepository,
	allocRepo repository.AllocationRepository,
	fulRepo repository.OrderFulfillmentRepository,
	adjRepo repository.LotAdjustmentRepository,
	logRepo repository.ActivityLogRepository,
	input RecordShipmentInput,
	recordedAt time.Time,
) (*entity.OrderFulfillment, error) {
	alloc, err := lockAllocationForItem(ctx, allocRepo, input.AllocationID, input.OrderItemID)
	if err != nil {
		return nil, err
	}

	fuls, err := fulRepo.ListByAllocation(ctx, alloc.ID)
	if err != nil {
		return nil, err
	}
	planned := findByShipment(fuls, input.ShipmentID)
	if planned != nil {
		// Reintento de un envío ya asentado.
		if fulfillmentShipped(planned) {
			if planned.QuantityShipped.Equal(input.Quantity) {
				return planned, nil
			}
			return nil, fmt.Errorf("el envío %s ya salió con %s unidades, no %s: %w",
				input.ShipmentID, planned.QuantityShipped, input.Quantity, domain.ErrConflict)
		}
		if !planned.CanTransitionTo(entity.FulfillmentStatusShipped) {
			return nil, fmt.Errorf("cumplimiento %s en estado %s no puede pasar a enviado: %w",
				planned.ID, planned.Status, domain.ErrInvalidTransition)
		}
	}

	switch alloc.Status {
	case entity.AllocationStatusConfirmed, entity.AllocationStatusPartial:
	case entity.AllocationStatusCompleted:
		return nil, fmt.Errorf("asignación %s ya enviada por completo: %w", alloc.ID, domain.ErrOverShipment)
	default:
		return nil, fmt.Errorf("asignación %s en estado %s no admite envíos: %w",
			alloc.ID, alloc.Status, domain.ErrInvalidTransition)
	}

	rec, err := invRepo.GetByIDForUpdate(ctx, alloc.InventoryID)
	if err != nil {
		return nil, err
	}

	// ¿Salida ya asentada por un intento anterior?
	prev, err := uc.recorder.AlreadyRecorded(ctx, logRepo, rec.Ref(), entity.ActionTypeAllocationFulfilled, recordedAt)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		if id, ok := prev.Metadata["fulfillment_id"].(string); ok && id != "" {
			return fulRepo.GetByID(ctx, id)
		}
		return nil, fmt.Errorf("entrada previa sin fulfillment_id: %w", domain.ErrLedgerIntegrity)
	}

	exceptID := ""
	if planned != nil {
		exceptID = planned.ID
	}
	if err := uc.checkOverShipment(ctx, allocRepo, fulRepo, alloc, fuls, exceptID, input.Quantity); err != nil {
		return nil, err
	}

	// Convierte reserva en salida: descuenta existencia y reserva juntas.
	previous := rec.Quantity
	if err := rec.ConsumeReservation(input.Quantity); err != nil {
		return nil, err
	}
	if err := invRepo.UpdateQuantities(ctx, rec); err != nil {
		return nil, err
	}

	adj := &entity.LotAdjustment{
		ID:               uuid.New().String(),
		InventoryID:      rec.ID,
		AdjustmentTypeID: entity.AdjustmentTypeShipment,
		PreviousQuantity: previous,
		AdjustedQuantity: input.Quantity.Neg(),
		NewQuantity:      rec.Quantity,
		ActorID:          input.ActorID,
		Comments:         "salida por envío " + input.ShipmentID,
		RecordedAt:       recordedAt,
	}
	if err := adjRepo.Create(ctx, adj); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var ful *entity.OrderFulfillment
	if planned != nil {
		planned.QuantityShipped = input.Quantity
		planned.Status = entity.FulfillmentStatusShipped
		planned.UpdatedAt = now
		if err := fulRepo.Update(ctx, planned); err != nil {
			return nil, err
		}
		ful = planned
	} else {
		ful = &entity.OrderFulfillment{
			ID:              uuid.New().String(),
			OrderItemID:     input.OrderItemID,
			AllocationID:    alloc.ID,
			ShipmentID:      input.ShipmentID,
			QuantityShipped: input.Quantity,
			Status:          entity.FulfillmentStatusShipped,
			ActorID:         input.ActorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := fulRepo.Create(ctx, ful); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return nil, fmt.Errorf("el envío %s ya tiene cumplimiento para la línea %s: %w",
					input.ShipmentID, input.OrderItemID, domain.ErrConflict)
			}
			return nil, err
		}
	}

	entry := &entity.ActivityLogEntry{
		Inventory:        rec.Ref(),
		ActionTypeID:     entity.ActionTypeAllocationFulfilled,
		PreviousQuantity: previous,
		QuantityChange:   input.Quantity.Neg(),
		NewQuantity:      rec.Quantity,
		StatusID:         rec.StatusID,
		ActorID:          input.ActorID,
		Metadata: map[string]any{
			"allocation_id":  alloc.ID,
			"order_item_id":  alloc.OrderItemID,
			"shipment_id":    input.ShipmentID,
			"fulfillment_id": ful.ID,
			"adjustment_id":  adj.ID,
			"reserved_total": rec.ReservedQuantity.String(),
		},
		RecordedAt: recordedAt,
	}
	if _, err := uc.recorder.Record(ctx, logRepo, entry); err != nil {
		return nil, err
	}

	// Si con esta salida la asignación quedó enviada por completo, ciérrala.
	shipped, _, err := shippedByAllocation(ctx, fulRepo, alloc.ID)
	if err != nil {
		return nil, err
	}
	if shipped.GreaterThanOrEqual(alloc.AllocatedQuantity) && alloc.CanTransitionTo(entity.AllocationStatusCompleted) {
		alloc.Status = entity.AllocationStatusCompleted
		alloc.UpdatedAt = now
		if err := allocRepo.Update(ctx, alloc); err != nil {
			return nil, err
		}
	}
	return ful, nil
}

// checkOverShipment acota el compromiso acumulado contra lo asignado, tanto
// de la asignación como de la línea de pedido completa.
func (uc *UseCase) checkOverShipment(
	ctx context.Context,
	allocRepo repository.AllocationRepository,
	fulRepo repository.OrderFulfillmentRepository,
	alloc *entity.Allocation,
	fuls []*entity.OrderFulfillment,
	exceptFulfillmentID string,
	qty decimal.Decimal,
) error {
	committed := committedByAllocation(fuls, exceptFulfillmentID).Add(qty)
	if committed.GreaterThan(alloc.AllocatedQuantity) {
		return fmt.Errorf("acumulado %s supera lo asignado %s de la asignación %s: %w",
			committed, alloc.AllocatedQuantity, alloc.ID, domain.ErrOverShipment)
	}

	itemCommitted, err := fulRepo.SumShippedByOrderItem(ctx, alloc.OrderItemID)
	if err != nil {
		return err
	}
	if exceptFulfillmentID != "" {
		for _, f := range fuls {
			if f.ID == exceptFulfillmentID && f.Status != entity.FulfillmentStatusCancelled {
				itemCommitted = itemCommitted.Sub(f.QuantityShipped)
			}
		}
	}
	itemCommitted = itemCommitted.Add(qty)
	itemAllocated, err := allocatedByOrderItem(ctx, allocRepo, alloc.OrderItemID)
	if err != nil {
		return err
	}
	if itemCommitted.GreaterThan(itemAllocated) {
		return fmt.Errorf("acumulado %s supera lo asignado %s de la línea %s: %w",
			itemCommitted, itemAllocated, alloc.OrderItemID, domain.ErrOverShipment)
	}
	return nil
}

// lockAllocationForItem bloquea la asignación y verifica que pertenezca a la
// línea de pedido indicada.
func lockAllocationForItem(ctx context.Context, allocRepo repository.AllocationRepository, allocationID, orderItemID string) (*entity.Allocation, error) {
	alloc, err := allocRepo.GetByIDForUpdate(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if alloc.OrderItemID != orderItemID {
		return nil, fmt.Errorf("la asignación %s pertenece a la línea %s, no a %s: %w",
			alloc.ID, alloc.OrderItemID, orderItemID, domain.ErrInvalidInput)
	}
	return alloc, nil
}

func findByShipment(fuls []*entity.OrderFulfillment, shipmentID string) *entity.OrderFulfillment {
	for _, f := range fuls {
		if f.ShipmentID == shipmentID {
			return f
		}
	}
	return nil
}
