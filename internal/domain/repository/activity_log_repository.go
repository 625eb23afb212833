package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ActivityLogRepository define el puerto de persistencia del libro de
// actividades. Solo se inserta: la unicidad sobre (inventario, tipo de
// acción, fecha) la hace cumplir el motor de almacenamiento y el adaptador
// la traduce a domain.ErrDuplicate.
type ActivityLogRepository interface {
	Insert(ctx context.Context, e *entity.ActivityLogEntry) error
	// GetByNaturalKey recupera la entrada existente tras un duplicado, para
	// contrastar su checksum con el del reintento.
	GetByNaturalKey(ctx context.Context, ref entity.InventoryRef, actionTypeID string, recordedAt time.Time) (*entity.ActivityLogEntry, error)
	ListByInventory(ctx context.Context, ref entity.InventoryRef, from, to *time.Time, limit, offset int) ([]*entity.ActivityLogEntry, error)
	CountByInventory(ctx context.Context, ref entity.InventoryRef, from, to *time.Time) (int64, error)
}
