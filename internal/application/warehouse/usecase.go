// Package warehouse administra la topología de almacenamiento: bodegas y sus
// ubicaciones internas. Ambas son los ámbitos válidos de una fila de inventario.
package warehouse

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// UseCase casos de uso CRUD para bodegas y ubicaciones.
type UseCase struct {
	repo repository.WarehouseRepository
}

// New construye el caso de uso.
func New(repo repository.WarehouseRepository) *UseCase {
	return &UseCase{repo: repo}
}

// Create crea una nueva bodega.
func (uc *UseCase) Create(ctx context.Context, code, name, address string) (*entity.Warehouse, error) {
	if code == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	w := &entity.Warehouse{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      name,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// GetByID obtiene una bodega por ID.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.repo.GetByID(ctx, id)
}

// List lista bodegas con paginación.
func (uc *UseCase) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	return uc.repo.List(ctx, limit, offset)
}

// CreateLocation crea una ubicación dentro de una bodega existente.
func (uc *UseCase) CreateLocation(ctx context.Context, warehouseID, code, name string) (*entity.Location, error) {
	if warehouseID == "" || code == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.repo.GetByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	l := &entity.Location{
		ID:          uuid.New().String(),
		WarehouseID: warehouseID,
		Code:        code,
		Name:        name,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.CreateLocation(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// GetLocationByID obtiene una ubicación por ID.
func (uc *UseCase) GetLocationByID(ctx context.Context, id string) (*entity.Location, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.repo.GetLocationByID(ctx, id)
}

// ListLocations lista las ubicaciones de una bodega.
func (uc *UseCase) ListLocations(ctx context.Context, warehouseID string) ([]*entity.Location, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.repo.GetByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	return uc.repo.ListLocations(ctx, warehouseID)
}
