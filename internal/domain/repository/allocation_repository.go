package repository

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// AllocationRepository define el puerto de persistencia para asignaciones.
type AllocationRepository interface {
	Create(ctx context.Context, a *entity.Allocation) error
	GetByID(ctx context.Context, id string) (*entity.Allocation, error)
	// GetByIDForUpdate bloquea la asignación mientras se transiciona su estado.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Allocation, error)
	Update(ctx context.Context, a *entity.Allocation) error
	ListByOrderItem(ctx context.Context, orderItemID string) ([]*entity.Allocation, error)
}
