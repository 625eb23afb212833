package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.OrderFulfillmentRepository = (*OrderFulfillmentRepo)(nil)

// OrderFulfillmentRepo implementación sobre PostgreSQL (usable con pool o tx).
type OrderFulfillmentRepo struct {
	q Querier
}

// NewOrderFulfillmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderFulfillmentRepository(q Querier) *OrderFulfillmentRepo {
	return &OrderFulfillmentRepo{q: q}
}

// Create persiste un cumplimiento. Un segundo cumplimiento de la misma línea
// dentro del mismo envío choca con la unicidad (línea, envío) y retorna
// domain.ErrDuplicate.
func (r *OrderFulfillmentRepo) Create(ctx context.Context, f *entity.OrderFulfillment) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	query := `
		INSERT INTO order_fulfillments (id, order_item_id, allocation_id, shipment_id, quantity_shipped, status, actor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		f.ID, f.OrderItemID, f.AllocationID, f.ShipmentID, f.QuantityShipped,
		f.Status, f.ActorID, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create fulfillment: %w", err)
	}
	return nil
}

// GetByID obtiene un cumplimiento por ID.
func (r *OrderFulfillmentRepo) GetByID(ctx context.Context, id string) (*entity.OrderFulfillment, error) {
	query := `
		SELECT id, order_item_id, allocation_id, shipment_id, quantity_shipped, status, actor_id, created_at, updated_at
		FROM order_fulfillments WHERE id = $1`
	var f entity.OrderFulfillment
	err := r.q.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.OrderItemID, &f.AllocationID, &f.ShipmentID, &f.QuantityShipped,
		&f.Status, &f.ActorID, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get fulfillment: %w", err)
	}
	return &f, nil
}

// Update persiste el estado y la cantidad enviada de un cumplimiento.
func (r *OrderFulfillmentRepo) Update(ctx context.Context, f *entity.OrderFulfillment) error {
	f.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE order_fulfillments
		SET quantity_shipped = $2, status = $3, updated_at = $4
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, f.ID, f.QuantityShipped, f.Status, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update fulfillment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByAllocation lista los cumplimientos de una asignación.
func (r *OrderFulfillmentRepo) ListByAllocation(ctx context.Context, allocationID string) ([]*entity.OrderFulfillment, error) {
	query := `
		SELECT id, order_item_id, allocation_id, shipment_id, quantity_shipped, status, actor_id, created_at, updated_at
		FROM order_fulfillments WHERE allocation_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, allocationID)
	if err != nil {
		return nil, fmt.Errorf("list fulfillments: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderFulfillment
	for rows.Next() {
		var f entity.OrderFulfillment
		if err := rows.Scan(
			&f.ID, &f.OrderItemID, &f.AllocationID, &f.ShipmentID, &f.QuantityShipped,
			&f.Status, &f.ActorID, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan fulfillment: %w", err)
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}

// SumShippedByOrderItem totaliza lo comprometido de una línea de pedido en
// todos sus cumplimientos no cancelados.
func (r *OrderFulfillmentRepo) SumShippedByOrderItem(ctx context.Context, orderItemID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity_shipped), 0)
		FROM order_fulfillments
		WHERE order_item_id = $1 AND status <> $2`
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, query, orderItemID, entity.FulfillmentStatusCancelled).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum shipped: %w", err)
	}
	return total, nil
}
