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

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo implementación sobre PostgreSQL (usable con pool o tx).
// El libro solo se inserta: no expone Update ni Delete.
type ActivityLogRepo struct {
	q Querier
}

// NewActivityLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivityLogRepository(q Querier) *ActivityLogRepo {
	return &ActivityLogRepo{q: q}
}

// Insert persiste una entrada del libro. Un choque con la clave natural
// (ámbito, inventario, tipo de acción, fecha) retorna domain.ErrDuplicate
// para que el caso de uso resuelva el reintento.
func (r *ActivityLogRepo) Insert(ctx context.Context, e *entity.ActivityLogEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO activity_log_entries (id, inventory_scope, inventory_id, action_type_id, previous_quantity, quantity_change, new_quantity, status_id, actor_id, checksum, metadata, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Inventory.Scope, e.Inventory.InventoryID, e.ActionTypeID,
		e.PreviousQuantity, e.QuantityChange, e.NewQuantity, e.StatusID,
		e.ActorID, e.Checksum, e.Metadata, e.RecordedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

// GetByNaturalKey recupera la entrada por su clave natural, para contrastar
// el checksum almacenado contra el de un reintento.
func (r *ActivityLogRepo) GetByNaturalKey(ctx context.Context, ref entity.InventoryRef, actionTypeID string, recordedAt time.Time) (*entity.ActivityLogEntry, error) {
	query := `
		SELECT id, inventory_scope, inventory_id, action_type_id, previous_quantity, quantity_change, new_quantity, status_id, actor_id, checksum, metadata, recorded_at
		FROM activity_log_entries
		WHERE inventory_scope = $1 AND inventory_id = $2 AND action_type_id = $3 AND recorded_at = $4`
	var e entity.ActivityLogEntry
	err := r.q.QueryRow(ctx, query, ref.Scope, ref.InventoryID, actionTypeID, recordedAt).Scan(
		&e.ID, &e.Inventory.Scope, &e.Inventory.InventoryID, &e.ActionTypeID,
		&e.PreviousQuantity, &e.QuantityChange, &e.NewQuantity, &e.StatusID,
		&e.ActorID, &e.Checksum, &e.Metadata, &e.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get log entry: %w", err)
	}
	return &e, nil
}

// ListByInventory lista el libro de un inventario en orden cronológico,
// opcionalmente acotado por rango de fechas.
func (r *ActivityLogRepo) ListByInventory(ctx context.Context, ref entity.InventoryRef, from, to *time.Time, limit, offset int) ([]*entity.ActivityLogEntry, error) {
	query := `
		SELECT id, inventory_scope, inventory_id, action_type_id, previous_quantity, quantity_change, new_quantity, status_id, actor_id, checksum, metadata, recorded_at
		FROM activity_log_entries
		WHERE inventory_scope = $1 AND inventory_id = $2`
	args := []any{ref.Scope, ref.InventoryID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND recorded_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND recorded_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY recorded_at LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.ActivityLogEntry
	for rows.Next() {
		var e entity.ActivityLogEntry
		if err := rows.Scan(
			&e.ID, &e.Inventory.Scope, &e.Inventory.InventoryID, &e.ActionTypeID,
			&e.PreviousQuantity, &e.QuantityChange, &e.NewQuantity, &e.StatusID,
			&e.ActorID, &e.Checksum, &e.Metadata, &e.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// CountByInventory cuenta las entradas del libro de un inventario en el rango.
func (r *ActivityLogRepo) CountByInventory(ctx context.Context, ref entity.InventoryRef, from, to *time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM activity_log_entries
		WHERE inventory_scope = $1 AND inventory_id = $2`
	args := []any{ref.Scope, ref.InventoryID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND recorded_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND recorded_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	var total int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count log entries: %w", err)
	}
	return total, nil
}
