package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// StoreUseCase expone el alta perezosa de filas de inventario para los
// colaboradores de recepción y producción: una fila en cero por (ámbito,
// lote) si aún no existe.
type StoreUseCase struct {
	invRepo       repository.InventoryRecordRepository
	batchRepo     repository.BatchRegistryRepository
	warehouseRepo repository.WarehouseRepository
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(
	invRepo repository.InventoryRecordRepository,
	batchRepo repository.BatchRegistryRepository,
	warehouseRepo repository.WarehouseRepository,
) *StoreUseCase {
	return &StoreUseCase{invRepo: invRepo, batchRepo: batchRepo, warehouseRepo: warehouseRepo}
}

// GetOrCreate devuelve la fila de inventario para (ámbito, lote), creándola
// en cero si no existe. El lote debe estar registrado y el ámbito debe
// apuntar a una bodega o ubicación existente.
func (uc *StoreUseCase) GetOrCreate(ctx context.Context, scope entity.ScopeRef, batch entity.BatchRef) (*entity.InventoryRecord, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.batchRepo.GetByRef(ctx, batch); err != nil {
		return nil, fmt.Errorf("lote %s/%s no registrado: %w", batch.Kind, batch.BatchID, err)
	}
	if err := uc.scopeExists(ctx, scope); err != nil {
		return nil, err
	}
	return uc.invRepo.GetOrCreate(ctx, scope, batch)
}

func (uc *StoreUseCase) scopeExists(ctx context.Context, scope entity.ScopeRef) error {
	switch scope.Scope {
	case entity.ScopeWarehouse:
		if _, err := uc.warehouseRepo.GetByID(ctx, scope.RefID); err != nil {
			return fmt.Errorf("bodega %s: %w", scope.RefID, err)
		}
	case entity.ScopeLocation:
		if _, err := uc.warehouseRepo.GetLocationByID(ctx, scope.RefID); err != nil {
			return fmt.Errorf("ubicación %s: %w", scope.RefID, err)
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}
