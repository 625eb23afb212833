package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Kardex-api/internal/application/allocation"
	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and allocation.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ allocation.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Los
// fallos transitorios (serialización, bloqueo no disponible) se traducen a
// errores de dominio reintetables antes de propagarse.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción para el motor de ajustes: inventario, ajustes y
// libro comprometen juntos o no comprometen.
func (r *TxRunner) Run(ctx context.Context, fn func(
	invRepo repository.InventoryRecordRepository,
	adjRepo repository.LotAdjustmentRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", translateTransient(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invRepo := NewInventoryRecordRepository(tx)
	adjRepo := NewLotAdjustmentRepository(tx)
	logRepo := NewActivityLogRepository(tx)

	if err := fn(invRepo, adjRepo, logRepo); err != nil {
		return translateTransient(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", translateTransient(err))
	}
	return nil
}

// RunAllocation inicia una transacción con los repos del coordinador de
// asignaciones (reserva, cumplimiento, ajuste y libro).
func (r *TxRunner) RunAllocation(ctx context.Context, fn func(
	invRepo repository.InventoryRecordRepository,
	allocRepo repository.AllocationRepository,
	fulRepo repository.OrderFulfillmentRepository,
	adjRepo repository.LotAdjustmentRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", translateTransient(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invRepo := NewInventoryRecordRepository(tx)
	allocRepo := NewAllocationRepository(tx)
	fulRepo := NewOrderFulfillmentRepository(tx)
	adjRepo := NewLotAdjustmentRepository(tx)
	logRepo := NewActivityLogRepository(tx)

	if err := fn(invRepo, allocRepo, fulRepo, adjRepo, logRepo); err != nil {
		return translateTransient(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", translateTransient(err))
	}
	return nil
}
