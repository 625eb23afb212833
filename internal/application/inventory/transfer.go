package inventory

import (
	"context"
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

// TransferUseCase traslada cantidad entre dos filas de inventario del mismo
// lote en una sola transacción: dos deltas con fila bloqueada y dos entradas
// del libro (salida y entrada) que comparten la misma marca lógica.
type TransferUseCase struct {
	txRunner TxRunner
	recorder *ledger.Recorder
	retry    txretry.Policy
	log      *logger.Logger
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(txRunner TxRunner, recorder *ledger.Recorder, retry txretry.Policy, log *logger.Logger) *TransferUseCase {
	return &TransferUseCase{txRunner: txRunner, recorder: recorder, retry: retry, log: log}
}

// TransferInput entrada para un traslado entre filas de inventario.
type TransferInput struct {
	FromInventoryID string
	ToInventoryID   string
	Quantity        decimal.Decimal
	ActorID         string
	Comment         string
	RecordedAt      time.Time
}

// TransferResult filas origen y destino tras el traslado.
type TransferResult struct {
	TransferID string
	From       *entity.InventoryRecord
	To         *entity.InventoryRecord
}

// Transfer descuenta del origen y suma al destino con ambas filas bloqueadas
// en orden determinista (por id) para evitar interbloqueos entre traslados
// cruzados.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.FromInventoryID == "" || input.ToInventoryID == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.FromInventoryID == input.ToInventoryID {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	recordedAt = ledger.CanonicalTime(recordedAt)

	var result *TransferResult
	err := uc.retry.Do(ctx, uc.log, "transfer_inventory", func() error {
		result = nil
		return uc.txRunner.Run(ctx, func(
			invRepo repository.InventoryRecordRepository,
			_ repository.LotAdjustmentRepository,
			logRepo repository.ActivityLogRepository,
		) error {
			res, err := uc.doTransfer(ctx, invRepo, logRepo, input, recordedAt)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *TransferUseCase) doTransfer(
	ctx context.Context,
	invRepo repository.InventoryRecordRepository,
	logRepo repository.ActivityLogRepository,
	input TransferInput,
	recordedAt time.Time,
) (*TransferResult, error) {
	// Orden determinista de bloqueo por id.
	first, second := input.FromInventoryID, input.ToInventoryID
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*entity.InventoryRecord, 2)
	for _, id := range []string{first, second} {
		rec, err := invRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = rec
	}
	from, to := locked[input.FromInventoryID], locked[input.ToInventoryID]

	if from.Batch != to.Batch {
		return nil, fmt.Errorf("el traslado exige el mismo lote en origen y destino: %w", domain.ErrConflict)
	}

	// ¿Traslado ya asentado por un intento anterior?
	prev, err := uc.recorder.AlreadyRecorded(ctx, logRepo, from.Ref(), entity.ActionTypeTransferOut, recordedAt)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		transferID, _ := prev.Metadata["transfer_id"].(string)
		return &TransferResult{TransferID: transferID, From: from, To: to}, nil
	}

	fromPrev := from.Quantity
	if err := from.ApplyDelta(input.Quantity.Neg()); err != nil {
		return nil, err
	}
	toPrev := to.Quantity
	if err := to.ApplyDelta(input.Quantity); err != nil {
		return nil, err
	}
	if err := invRepo.UpdateQuantities(ctx, from); err != nil {
		return nil, err
	}
	if err := invRepo.UpdateQuantities(ctx, to); err != nil {
		return nil, err
	}

	transferID := uuid.New().String()
	salida := &entity.ActivityLogEntry{
		Inventory:        from.Ref(),
		ActionTypeID:     entity.ActionTypeTransferOut,
		PreviousQuantity: fromPrev,
		QuantityChange:   input.Quantity.Neg(),
		NewQuantity:      from.Quantity,
		StatusID:         from.StatusID,
		ActorID:          input.ActorID,
		Metadata: map[string]any{
			"transfer_id":              transferID,
			"counterpart_inventory_id": to.ID,
			"comment":                  input.Comment,
		},
		RecordedAt: recordedAt,
	}
	if _, err := uc.recorder.Record(ctx, logRepo, salida); err != nil {
		return nil, err
	}

	entrada := &entity.ActivityLogEntry{
		Inventory:        to.Ref(),
		ActionTypeID:     entity.ActionTypeTransferIn,
		PreviousQuantity: toPrev,
		QuantityChange:   input.Quantity,
		NewQuantity:      to.Quantity,
		StatusID:         to.StatusID,
		ActorID:          input.ActorID,
		Metadata: map[string]any{
			"transfer_id":              transferID,
			"counterpart_inventory_id": from.ID,
			"comment":                  input.Comment,
		},
		RecordedAt: recordedAt,
	}
	if _, err := uc.recorder.Record(ctx, logRepo, entrada); err != nil {
		return nil, err
	}

	return &TransferResult{TransferID: transferID, From: from, To: to}, nil
}
