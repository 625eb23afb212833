package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ActionTypeRepository = (*ActionTypeRepo)(nil)

// ActionTypeRepo catálogo de tipos de acción sobre PostgreSQL.
type ActionTypeRepo struct {
	q Querier
}

// NewActionTypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActionTypeRepository(q Querier) *ActionTypeRepo {
	return &ActionTypeRepo{q: q}
}

// Upsert inserta o actualiza una fila del catálogo por su código.
func (r *ActionTypeRepo) Upsert(ctx context.Context, at *entity.ActionType) error {
	query := `
		INSERT INTO action_types (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`
	if _, err := r.q.Exec(ctx, query, at.ID, at.Name, at.Description); err != nil {
		return fmt.Errorf("upsert action type: %w", err)
	}
	return nil
}

// GetByID obtiene un tipo de acción por su código.
func (r *ActionTypeRepo) GetByID(ctx context.Context, id string) (*entity.ActionType, error) {
	query := `SELECT id, name, description FROM action_types WHERE id = $1`
	var at entity.ActionType
	var description *string
	err := r.q.QueryRow(ctx, query, id).Scan(&at.ID, &at.Name, &description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get action type: %w", err)
	}
	if description != nil {
		at.Description = *description
	}
	return &at, nil
}

// List lista el catálogo completo de tipos de acción.
func (r *ActionTypeRepo) List(ctx context.Context) ([]*entity.ActionType, error) {
	query := `SELECT id, name, description FROM action_types ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list action types: %w", err)
	}
	defer rows.Close()
	var list []*entity.ActionType
	for rows.Next() {
		var at entity.ActionType
		var description *string
		if err := rows.Scan(&at.ID, &at.Name, &description); err != nil {
			return nil, fmt.Errorf("scan action type: %w", err)
		}
		if description != nil {
			at.Description = *description
		}
		list = append(list, &at)
	}
	return list, rows.Err()
}

var _ repository.AdjustmentTypeRepository = (*AdjustmentTypeRepo)(nil)

// AdjustmentTypeRepo catálogo de tipos de ajuste sobre PostgreSQL.
type AdjustmentTypeRepo struct {
	q Querier
}

// NewAdjustmentTypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentTypeRepository(q Querier) *AdjustmentTypeRepo {
	return &AdjustmentTypeRepo{q: q}
}

// Upsert inserta o actualiza una fila del catálogo por su código.
func (r *AdjustmentTypeRepo) Upsert(ctx context.Context, at *entity.AdjustmentType) error {
	query := `
		INSERT INTO adjustment_types (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`
	if _, err := r.q.Exec(ctx, query, at.ID, at.Name, at.Description); err != nil {
		return fmt.Errorf("upsert adjustment type: %w", err)
	}
	return nil
}

// GetByID obtiene un tipo de ajuste por su código.
func (r *AdjustmentTypeRepo) GetByID(ctx context.Context, id string) (*entity.AdjustmentType, error) {
	query := `SELECT id, name, description FROM adjustment_types WHERE id = $1`
	var at entity.AdjustmentType
	var description *string
	err := r.q.QueryRow(ctx, query, id).Scan(&at.ID, &at.Name, &description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get adjustment type: %w", err)
	}
	if description != nil {
		at.Description = *description
	}
	return &at, nil
}

// List lista el catálogo completo de tipos de ajuste.
func (r *AdjustmentTypeRepo) List(ctx context.Context) ([]*entity.AdjustmentType, error) {
	query := `SELECT id, name, description FROM adjustment_types ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list adjustment types: %w", err)
	}
	defer rows.Close()
	var list []*entity.AdjustmentType
	for rows.Next() {
		var at entity.AdjustmentType
		var description *string
		if err := rows.Scan(&at.ID, &at.Name, &description); err != nil {
			return nil, fmt.Errorf("scan adjustment type: %w", err)
		}
		if description != nil {
			at.Description = *description
		}
		list = append(list, &at)
	}
	return list, rows.Err()
}
