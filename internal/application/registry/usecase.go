// Package registry resuelve y da de alta lotes en el registro: la fuente de
// verdad de qué pares (tipo, lote) pueden tener inventario.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// UseCase altas y consultas del registro de lotes.
type UseCase struct {
	batchRepo repository.BatchRegistryRepository
}

// New construye el caso de uso del registro.
func New(batchRepo repository.BatchRegistryRepository) *UseCase {
	return &UseCase{batchRepo: batchRepo}
}

// Register da de alta un lote de producto o de material de empaque. El alta
// es inmutable e idempotente: registrar un par ya existente devuelve el
// asiento original.
func (uc *UseCase) Register(ctx context.Context, kind, batchID, actorID string) (*entity.BatchRegistryEntry, error) {
	if actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	ref, err := entity.NewBatchRef(kind, batchID)
	if err != nil {
		return nil, err
	}

	entry := &entity.BatchRegistryEntry{
		ID:        uuid.New().String(),
		Ref:       ref,
		CreatedBy: actorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.batchRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return uc.batchRepo.GetByRef(ctx, ref)
		}
		return nil, err
	}
	return entry, nil
}

// Resolve busca un lote registrado por su referencia etiquetada.
func (uc *UseCase) Resolve(ctx context.Context, kind, batchID string) (*entity.BatchRegistryEntry, error) {
	ref, err := entity.NewBatchRef(kind, batchID)
	if err != nil {
		return nil, err
	}
	return uc.batchRepo.GetByRef(ctx, ref)
}
