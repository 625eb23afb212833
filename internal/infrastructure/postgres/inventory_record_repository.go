package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

// GetByID obtiene una fila de inventario por ID.
func (r *InventoryRecordRepo) GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate bloquea la fila (SELECT FOR UPDATE) durante la transacción.
func (r *InventoryRecordRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.get(ctx, id, true)
}

func (r *InventoryRecordRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.InventoryRecord, error) {
	query := `
		SELECT id, scope, scope_ref_id, batch_kind, batch_id, quantity, reserved_quantity, status_id, status_date, created_at, updated_at
		FROM inventory_records WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var rec entity.InventoryRecord
	err := r.q.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Scope.Scope, &rec.Scope.RefID, &rec.Batch.Kind, &rec.Batch.BatchID,
		&rec.Quantity, &rec.ReservedQuantity, &rec.StatusID, &rec.StatusDate,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return &rec, nil
}

// GetOrCreate devuelve la fila para (ámbito, lote), creándola en cero si no
// existe. El INSERT con ON CONFLICT DO NOTHING la hace segura ante carreras:
// dos llamadas concurrentes terminan leyendo la misma fila.
func (r *InventoryRecordRepo) GetOrCreate(ctx context.Context, scope entity.ScopeRef, batch entity.BatchRef) (*entity.InventoryRecord, error) {
	now := time.Now().UTC()
	insert := `
		INSERT INTO inventory_records (id, scope, scope_ref_id, batch_kind, batch_id, quantity, reserved_quantity, status_id, status_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7, $7, $7)
		ON CONFLICT (scope, scope_ref_id, batch_kind, batch_id) DO NOTHING`
	_, err := r.q.Exec(ctx, insert,
		uuid.New().String(), scope.Scope, scope.RefID, batch.Kind, batch.BatchID,
		entity.InventoryStatusActive, now,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create inventory record: %w", err)
	}

	query := `
		SELECT id, scope, scope_ref_id, batch_kind, batch_id, quantity, reserved_quantity, status_id, status_date, created_at, updated_at
		FROM inventory_records
		WHERE scope = $1 AND scope_ref_id = $2 AND batch_kind = $3 AND batch_id = $4`
	var rec entity.InventoryRecord
	err = r.q.QueryRow(ctx, query, scope.Scope, scope.RefID, batch.Kind, batch.BatchID).Scan(
		&rec.ID, &rec.Scope.Scope, &rec.Scope.RefID, &rec.Batch.Kind, &rec.Batch.BatchID,
		&rec.Quantity, &rec.ReservedQuantity, &rec.StatusID, &rec.StatusDate,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create inventory record: %w", err)
	}
	return &rec, nil
}

// UpdateQuantities persiste cantidad y reserva de una fila ya bloqueada.
func (r *InventoryRecordRepo) UpdateQuantities(ctx context.Context, rec *entity.InventoryRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE inventory_records
		SET quantity = $2, reserved_quantity = $3, updated_at = $4
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, rec.ID, rec.Quantity, rec.ReservedQuantity, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update quantities: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByScope lista las filas de inventario de una bodega o ubicación.
func (r *InventoryRecordRepo) ListByScope(ctx context.Context, scope entity.ScopeRef, limit, offset int) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT id, scope, scope_ref_id, batch_kind, batch_id, quantity, reserved_quantity, status_id, status_date, created_at, updated_at
		FROM inventory_records
		WHERE scope = $1 AND scope_ref_id = $2
		ORDER BY batch_kind, batch_id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, scope.Scope, scope.RefID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list by scope: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(
			&rec.ID, &rec.Scope.Scope, &rec.Scope.RefID, &rec.Batch.Kind, &rec.Batch.BatchID,
			&rec.Quantity, &rec.ReservedQuantity, &rec.StatusID, &rec.StatusDate,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
