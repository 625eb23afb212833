package repository

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// BatchRegistryRepository define el puerto de persistencia del registro de lotes (DIP).
// Las altas son inmutables: no hay Update ni Delete.
type BatchRegistryRepository interface {
	Create(ctx context.Context, entry *entity.BatchRegistryEntry) error
	GetByID(ctx context.Context, id string) (*entity.BatchRegistryEntry, error)
	GetByRef(ctx context.Context, ref entity.BatchRef) (*entity.BatchRegistryEntry, error)
}
