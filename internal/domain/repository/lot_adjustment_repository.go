package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// LotAdjustmentRepository define el puerto de persistencia para ajustes de lote.
// Solo inserción y lectura: los ajustes nunca se editan ni se borran.
type LotAdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.LotAdjustment) error
	GetByID(ctx context.Context, id string) (*entity.LotAdjustment, error)
	ListByInventory(ctx context.Context, inventoryID string, from, to *time.Time, limit, offset int) ([]*entity.LotAdjustment, error)
}
