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

var _ repository.LotAdjustmentRepository = (*LotAdjustmentRepo)(nil)

// LotAdjustmentRepo implementación sobre PostgreSQL (usable con pool o tx).
type LotAdjustmentRepo struct {
	q Querier
}

// NewLotAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotAdjustmentRepository(q Querier) *LotAdjustmentRepo {
	return &LotAdjustmentRepo{q: q}
}

// Create persiste un ajuste de lote.
func (r *LotAdjustmentRepo) Create(ctx context.Context, adj *entity.LotAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lot_adjustments (id, inventory_id, adjustment_type_id, previous_quantity, adjusted_quantity, new_quantity, actor_id, comments, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	comments := (*string)(nil)
	if adj.Comments != "" {
		comments = &adj.Comments
	}
	_, err := r.q.Exec(ctx, query,
		adj.ID, adj.InventoryID, adj.AdjustmentTypeID,
		adj.PreviousQuantity, adj.AdjustedQuantity, adj.NewQuantity,
		adj.ActorID, comments, adj.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("create lot adjustment: %w", err)
	}
	return nil
}

// GetByID obtiene un ajuste por ID.
func (r *LotAdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.LotAdjustment, error) {
	query := `
		SELECT id, inventory_id, adjustment_type_id, previous_quantity, adjusted_quantity, new_quantity, actor_id, comments, recorded_at
		FROM lot_adjustments WHERE id = $1`
	var adj entity.LotAdjustment
	var comments *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&adj.ID, &adj.InventoryID, &adj.AdjustmentTypeID,
		&adj.PreviousQuantity, &adj.AdjustedQuantity, &adj.NewQuantity,
		&adj.ActorID, &comments, &adj.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lot adjustment: %w", err)
	}
	if comments != nil {
		adj.Comments = *comments
	}
	return &adj, nil
}

// ListByInventory lista ajustes de un inventario, más recientes primero,
// opcionalmente acotados por rango de fechas.
func (r *LotAdjustmentRepo) ListByInventory(ctx context.Context, inventoryID string, from, to *time.Time, limit, offset int) ([]*entity.LotAdjustment, error) {
	query := `
		SELECT id, inventory_id, adjustment_type_id, previous_quantity, adjusted_quantity, new_quantity, actor_id, comments, recorded_at
		FROM lot_adjustments WHERE inventory_id = $1`
	args := []any{inventoryID}
	pos := 2
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
	query += fmt.Sprintf(" ORDER BY recorded_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lot adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.LotAdjustment
	for rows.Next() {
		var adj entity.LotAdjustment
		var comments *string
		if err := rows.Scan(
			&adj.ID, &adj.InventoryID, &adj.AdjustmentTypeID,
			&adj.PreviousQuantity, &adj.AdjustedQuantity, &adj.NewQuantity,
			&adj.ActorID, &comments, &adj.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lot adjustment: %w", err)
		}
		if comments != nil {
			adj.Comments = *comments
		}
		list = append(list, &adj)
	}
	return list, rows.Err()
}
