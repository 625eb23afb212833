package repository

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// InventoryRecordRepository define el puerto para consultar/actualizar el
// estado vigente de inventario por (ámbito, lote).
// Usado dentro de transacciones para garantizar consistencia.
type InventoryRecordRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error)
	// GetByIDForUpdate bloquea la fila para update (SELECT FOR UPDATE):
	// toda lectura-modificación-escritura de cantidades pasa por aquí.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error)
	// GetOrCreate devuelve la fila para (ámbito, lote), creándola en cero si
	// no existe. Seguro ante carreras de creación (upsert).
	GetOrCreate(ctx context.Context, scope entity.ScopeRef, batch entity.BatchRef) (*entity.InventoryRecord, error)
	// UpdateQuantities persiste cantidad y reserva de una fila ya bloqueada.
	UpdateQuantities(ctx context.Context, rec *entity.InventoryRecord) error
	ListByScope(ctx context.Context, scope entity.ScopeRef, limit, offset int) ([]*entity.InventoryRecord, error)
}
