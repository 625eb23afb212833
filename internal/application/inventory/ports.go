package inventory

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de ajustes:
// cambio de cantidad, ajuste de lote y entrada del libro comprometen juntos o
// no comprometen.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invRepo repository.InventoryRecordRepository,
		adjRepo repository.LotAdjustmentRepository,
		logRepo repository.ActivityLogRepository,
	) error) error
}
