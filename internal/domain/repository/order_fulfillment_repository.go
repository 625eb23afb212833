package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// OrderFulfillmentRepository define el puerto de persistencia para cumplimientos.
type OrderFulfillmentRepository interface {
	Create(ctx context.Context, f *entity.OrderFulfillment) error
	GetByID(ctx context.Context, id string) (*entity.OrderFulfillment, error)
	Update(ctx context.Context, f *entity.OrderFulfillment) error
	ListByAllocation(ctx context.Context, allocationID string) ([]*entity.OrderFulfillment, error)
	// SumShippedByOrderItem totaliza lo enviado de una línea de pedido en
	// todos sus cumplimientos no cancelados (control de sobre-envío).
	SumShippedByOrderItem(ctx context.Context, orderItemID string) (decimal.Decimal, error)
}
