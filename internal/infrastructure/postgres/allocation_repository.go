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

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo implementación sobre PostgreSQL (usable con pool o tx).
type AllocationRepo struct {
	q Querier
}

// NewAllocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAllocationRepository(q Querier) *AllocationRepo {
	return &AllocationRepo{q: q}
}

// Create persiste una asignación nueva.
func (r *AllocationRepo) Create(ctx context.Context, a *entity.Allocation) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO allocations (id, order_item_id, inventory_id, requested_quantity, allocated_quantity, status, actor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.OrderItemID, a.InventoryID, a.RequestedQuantity, a.AllocatedQuantity,
		a.Status, a.ActorID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	return nil
}

// GetByID obtiene una asignación por ID.
func (r *AllocationRepo) GetByID(ctx context.Context, id string) (*entity.Allocation, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate bloquea la asignación (SELECT FOR UPDATE) mientras se
// transiciona su estado.
func (r *AllocationRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Allocation, error) {
	return r.get(ctx, id, true)
}

func (r *AllocationRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Allocation, error) {
	query := `
		SELECT id, order_item_id, inventory_id, requested_quantity, allocated_quantity, status, actor_id, created_at, updated_at
		FROM allocations WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var a entity.Allocation
	err := r.q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.OrderItemID, &a.InventoryID, &a.RequestedQuantity, &a.AllocatedQuantity,
		&a.Status, &a.ActorID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	return &a, nil
}

// Update persiste el estado y la cantidad apartada de una asignación.
func (r *AllocationRepo) Update(ctx context.Context, a *entity.Allocation) error {
	a.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE allocations
		SET allocated_quantity = $2, status = $3, updated_at = $4
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, a.ID, a.AllocatedQuantity, a.Status, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update allocation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOrderItem lista las asignaciones de una línea de pedido.
func (r *AllocationRepo) ListByOrderItem(ctx context.Context, orderItemID string) ([]*entity.Allocation, error) {
	query := `
		SELECT id, order_item_id, inventory_id, requested_quantity, allocated_quantity, status, actor_id, created_at, updated_at
		FROM allocations WHERE order_item_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, orderItemID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Allocation
	for rows.Next() {
		var a entity.Allocation
		if err := rows.Scan(
			&a.ID, &a.OrderItemID, &a.InventoryID, &a.RequestedQuantity, &a.AllocatedQuantity,
			&a.Status, &a.ActorID, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
