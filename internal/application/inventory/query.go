package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// QueryUseCase lecturas del inventario y de su libro de actividades.
type QueryUseCase struct {
	invRepo  repository.InventoryRecordRepository
	adjRepo  repository.LotAdjustmentRepository
	logRepo  repository.ActivityLogRepository
	recorder *ledger.Recorder
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	invRepo repository.InventoryRecordRepository,
	adjRepo repository.LotAdjustmentRepository,
	logRepo repository.ActivityLogRepository,
	recorder *ledger.Recorder,
) *QueryUseCase {
	return &QueryUseCase{invRepo: invRepo, adjRepo: adjRepo, logRepo: logRepo, recorder: recorder}
}

// GetCurrentQuantity devuelve la fila vigente (cantidad, reserva, disponible).
func (uc *QueryUseCase) GetCurrentQuantity(ctx context.Context, inventoryID string) (*entity.InventoryRecord, error) {
	return uc.invRepo.GetByID(ctx, inventoryID)
}

// GetLedger devuelve una página del libro de un inventario, ordenada por
// fecha de asiento, junto con el total del rango.
func (uc *QueryUseCase) GetLedger(ctx context.Context, inventoryID string, from, to *time.Time, limit, offset int) ([]*entity.ActivityLogEntry, int64, error) {
	rec, err := uc.invRepo.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, 0, err
	}
	ref := rec.Ref()

	entries, err := uc.logRepo.ListByInventory(ctx, ref, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.logRepo.CountByInventory(ctx, ref, from, to)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListByScope lista las filas de inventario de una bodega o ubicación.
func (uc *QueryUseCase) ListByScope(ctx context.Context, scope entity.ScopeRef, limit, offset int) ([]*entity.InventoryRecord, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return uc.invRepo.ListByScope(ctx, scope, limit, offset)
}

// GetAdjustments devuelve una página de los ajustes de un inventario,
// más recientes primero.
func (uc *QueryUseCase) GetAdjustments(ctx context.Context, inventoryID string, from, to *time.Time, limit, offset int) ([]*entity.LotAdjustment, error) {
	if _, err := uc.invRepo.GetByID(ctx, inventoryID); err != nil {
		return nil, err
	}
	return uc.adjRepo.ListByInventory(ctx, inventoryID, from, to, limit, offset)
}

// VerifyReport resultado de recorrer un rango del libro verificando huellas.
type VerifyReport struct {
	InventoryID string
	Checked     int
	Violations  []string
}

// VerifyLedger recomputa la huella de cada entrada del rango y reporta las
// que no verifican. Pensado para el trabajo periódico de consistencia; no
// corrige nada, solo reporta.
func (uc *QueryUseCase) VerifyLedger(ctx context.Context, inventoryID string, from, to *time.Time) (*VerifyReport, error) {
	rec, err := uc.invRepo.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	ref := rec.Ref()

	report := &VerifyReport{InventoryID: inventoryID}
	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		entries, err := uc.logRepo.ListByInventory(ctx, ref, from, to, pageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}
		for _, e := range entries {
			ok, err := uc.recorder.Checksums().Verify(e)
			if err != nil {
				return nil, err
			}
			report.Checked++
			if !ok {
				report.Violations = append(report.Violations, e.ID)
			}
		}
		if len(entries) < pageSize {
			break
		}
	}
	return report, nil
}
