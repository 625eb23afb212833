package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/txretry"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// AdjustUseCase aplica ajustes razonados de cantidad de forma transaccional:
// bloqueo de fila (SELECT FOR UPDATE), ajuste de lote y entrada del libro en
// la misma transacción, con reintento acotado ante conflictos transitorios.
type AdjustUseCase struct {
	txRunner    TxRunner
	adjTypeRepo repository.AdjustmentTypeRepository
	recorder    *ledger.Recorder
	retry       txretry.Policy
	log         *logger.Logger
}

// NewAdjustUseCase construye el caso de uso.
func NewAdjustUseCase(
	txRunner TxRunner,
	adjTypeRepo repository.AdjustmentTypeRepository,
	recorder *ledger.Recorder,
	retry txretry.Policy,
	log *logger.Logger,
) *AdjustUseCase {
	return &AdjustUseCase{
		txRunner:    txRunner,
		adjTypeRepo: adjTypeRepo,
		recorder:    recorder,
		retry:       retry,
		log:         log,
	}
}

// AdjustInput entrada para aplicar un ajuste de lote.
// ExpectedPrevious es opcional: si el llamador calculó la cantidad previa
// fuera del bloqueo, se contrasta al bloquear y falla con ErrStaleRead si ya
// no coincide. RecordedAt es opcional: un reintento externo debe repetir la
// misma marca lógica para que el libro lo reconozca como la misma operación.
type AdjustInput struct {
	InventoryID      string
	AdjustmentTypeID string
	Delta            decimal.Decimal
	ActorID          string
	Comment          string
	ExpectedPrevious *decimal.Decimal
	RecordedAt       time.Time
}

// Adjust valida la entrada y, con la fila bloqueada dentro de una
// transacción, aplica el delta, persiste el ajuste y asienta la entrada del
// libro. Todo-o-nada: ante ErrInsufficientQuantity no queda ningún ajuste
// parcial aplicado.
func (uc *AdjustUseCase) Adjust(ctx context.Context, input AdjustInput) (*entity.LotAdjustment, error) {
	if input.InventoryID == "" || input.ActorID == "" || input.AdjustmentTypeID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Delta.IsZero() {
		return nil, domain.ErrZeroDelta
	}
	if _, err := uc.adjTypeRepo.GetByID(ctx, input.AdjustmentTypeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("tipo de ajuste %q: %w", input.AdjustmentTypeID, domain.ErrInvalidInput)
		}
		return nil, err
	}

	// Marca lógica fijada antes del primer intento: los reintentos la repiten.
	// Canonicalizada a la resolución de almacenamiento para que ajuste, clave
	// natural y huella compartan la misma fecha que la fila persistida.
	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	recordedAt = ledger.CanonicalTime(recordedAt)

	var result *entity.LotAdjustment
	err := uc.retry.Do(ctx, uc.log, "adjust_inventory", func() error {
		result = nil
		return uc.txRunner.Run(ctx, func(
			invRepo repository.InventoryRecordRepository,
			adjRepo repository.LotAdjustmentRepository,
			logRepo repository.ActivityLogRepository,
		) error {
			adj, err := uc.doAdjust(ctx, invRepo, adjRepo, logRepo, input, recordedAt)
			if err != nil {
				return err
			}
			result = adj
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// doAdjust corre con la transacción abierta y la fila bloqueada.
func (uc *AdjustUseCase) doAdjust(
	ctx context.Context,
	invRepo repository.InventoryRecordRepository,
	adjRepo repository.LotAdjustmentRepository,
	logRepo repository.ActivityLogRepository,
	input AdjustInput,
	recordedAt time.Time,
) (*entity.LotAdjustment, error) {
	// Bloquea la fila: serializa toda mutación de este inventario.
	rec, err := invRepo.GetByIDForUpdate(ctx, input.InventoryID)
	if err != nil {
		return nil, err
	}

	// ¿La operación lógica ya quedó asentada por un intento anterior?
	prev, err := uc.recorder.AlreadyRecorded(ctx, logRepo, rec.Ref(), entity.ActionTypeAdjustment, recordedAt)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		return uc.adjustmentFromEntry(ctx, adjRepo, input, prev), nil
	}

	if input.ExpectedPrevious != nil && !rec.Quantity.Equal(*input.ExpectedPrevious) {
		return nil, fmt.Errorf("se esperaba %s y la fila tiene %s: %w",
			input.ExpectedPrevious, rec.Quantity, domain.ErrStaleRead)
	}

	previous := rec.Quantity
	if err := rec.ApplyDelta(input.Delta); err != nil {
		return nil, err
	}
	if err := invRepo.UpdateQuantities(ctx, rec); err != nil {
		return nil, err
	}

	adj := &entity.LotAdjustment{
		ID:               uuid.New().String(),
		InventoryID:      rec.ID,
		AdjustmentTypeID: input.AdjustmentTypeID,
		PreviousQuantity: previous,
		AdjustedQuantity: input.Delta,
		NewQuantity:      rec.Quantity,
		ActorID:          input.ActorID,
		Comments:         input.Comment,
		RecordedAt:       recordedAt,
	}
	if err := adjRepo.Create(ctx, adj); err != nil {
		return nil, err
	}

	entry := &entity.ActivityLogEntry{
		Inventory:        rec.Ref(),
		ActionTypeID:     entity.ActionTypeAdjustment,
		PreviousQuantity: previous,
		QuantityChange:   input.Delta,
		NewQuantity:      rec.Quantity,
		StatusID:         rec.StatusID,
		ActorID:          input.ActorID,
		Metadata: map[string]any{
			"adjustment_id":      adj.ID,
			"adjustment_type_id": input.AdjustmentTypeID,
		},
		RecordedAt: recordedAt,
	}
	if _, err := uc.recorder.Record(ctx, logRepo, entry); err != nil {
		return nil, err
	}
	return adj, nil
}

// adjustmentFromEntry reconstruye la respuesta de un reintento ya asentado
// sin volver a tocar cantidades.
func (uc *AdjustUseCase) adjustmentFromEntry(
	ctx context.Context,
	adjRepo repository.LotAdjustmentRepository,
	input AdjustInput,
	e *entity.ActivityLogEntry,
) *entity.LotAdjustment {
	if id, ok := e.Metadata["adjustment_id"].(string); ok && id != "" {
		if adj, err := adjRepo.GetByID(ctx, id); err == nil && adj != nil {
			return adj
		}
	}
	return &entity.LotAdjustment{
		InventoryID:      e.Inventory.InventoryID,
		AdjustmentTypeID: input.AdjustmentTypeID,
		PreviousQuantity: e.PreviousQuantity,
		AdjustedQuantity: e.QuantityChange,
		NewQuantity:      e.NewQuantity,
		ActorID:          e.ActorID,
		Comments:         input.Comment,
		RecordedAt:       e.RecordedAt,
	}
}
