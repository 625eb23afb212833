package allocation

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando los
// repositorios que el coordinador de asignaciones necesita atados a esa tx.
// Reserva, cambio de estado, salida de inventario y entrada del libro
// comprometen juntos o no comprometen.
type TxRunner interface {
	RunAllocation(ctx context.Context, fn func(
		invRepo repository.InventoryRecordRepository,
		allocRepo repository.AllocationRepository,
		fulRepo repository.OrderFulfillmentRepository,
		adjRepo repository.LotAdjustmentRepository,
		logRepo repository.ActivityLogRepository,
	) error) error
}
