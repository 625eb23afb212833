package repository

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ActionTypeRepository define el puerto del catálogo de tipos de acción.
type ActionTypeRepository interface {
	Upsert(ctx context.Context, at *entity.ActionType) error
	GetByID(ctx context.Context, id string) (*entity.ActionType, error)
	List(ctx context.Context) ([]*entity.ActionType, error)
}

// AdjustmentTypeRepository define el puerto del catálogo de tipos de ajuste.
type AdjustmentTypeRepository interface {
	Upsert(ctx context.Context, at *entity.AdjustmentType) error
	GetByID(ctx context.Context, id string) (*entity.AdjustmentType, error)
	List(ctx context.Context) ([]*entity.AdjustmentType, error)
}
