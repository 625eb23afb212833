package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements define el esquema completo del kardex. Cada sentencia es
// idempotente (IF NOT EXISTS) para que ApplySchema pueda correrse en cada
// arranque del seed sin romper una base ya inicializada.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS batch_registry (
		id          UUID PRIMARY KEY,
		batch_kind  TEXT NOT NULL CHECK (batch_kind IN ('PRODUCT', 'PACKAGING_MATERIAL')),
		batch_id    TEXT NOT NULL,
		created_by  TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (batch_kind, batch_id)
	)`,

	`CREATE TABLE IF NOT EXISTS warehouses (
		id         UUID PRIMARY KEY,
		code       TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		address    TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS locations (
		id           UUID PRIMARY KEY,
		warehouse_id UUID NOT NULL REFERENCES warehouses(id),
		code         TEXT NOT NULL,
		name         TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (warehouse_id, code)
	)`,

	`CREATE TABLE IF NOT EXISTS action_types (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS adjustment_types (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT
	)`,

	// reserved_quantity <= quantity es el invariante central del registro:
	// nunca se aparta más de lo que físicamente hay.
	`CREATE TABLE IF NOT EXISTS inventory_records (
		id                UUID PRIMARY KEY,
		scope             TEXT NOT NULL CHECK (scope IN ('WAREHOUSE', 'LOCATION')),
		scope_ref_id      UUID NOT NULL,
		batch_kind        TEXT NOT NULL,
		batch_id          TEXT NOT NULL,
		quantity          NUMERIC(18,3) NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		reserved_quantity NUMERIC(18,3) NOT NULL DEFAULT 0 CHECK (reserved_quantity >= 0),
		status_id         TEXT NOT NULL,
		status_date       TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (reserved_quantity <= quantity),
		UNIQUE (scope, scope_ref_id, batch_kind, batch_id)
	)`,

	// new = previous + adjusted es la conservación del ajuste; junto con
	// new_quantity >= 0 queda declarada también al nivel de la base.
	`CREATE TABLE IF NOT EXISTS lot_adjustments (
		id                 UUID PRIMARY KEY,
		inventory_id       UUID NOT NULL REFERENCES inventory_records(id),
		adjustment_type_id TEXT NOT NULL REFERENCES adjustment_types(id),
		previous_quantity  NUMERIC(18,3) NOT NULL,
		adjusted_quantity  NUMERIC(18,3) NOT NULL CHECK (adjusted_quantity <> 0),
		new_quantity       NUMERIC(18,3) NOT NULL CHECK (new_quantity >= 0),
		actor_id           TEXT NOT NULL,
		comments           TEXT,
		recorded_at        TIMESTAMPTZ NOT NULL,
		CHECK (new_quantity = previous_quantity + adjusted_quantity)
	)`,

	// La clave natural (ámbito, inventario, acción, fecha) respalda la
	// idempotencia de los casos de uso: un reintento con la misma marca
	// lógica choca aquí en vez de duplicar el asiento.
	`CREATE TABLE IF NOT EXISTS activity_log_entries (
		id                UUID PRIMARY KEY,
		inventory_scope   TEXT NOT NULL,
		inventory_id      UUID NOT NULL,
		action_type_id    TEXT NOT NULL REFERENCES action_types(id),
		previous_quantity NUMERIC(18,3) NOT NULL,
		quantity_change   NUMERIC(18,3) NOT NULL,
		new_quantity      NUMERIC(18,3) NOT NULL,
		status_id         TEXT NOT NULL,
		actor_id          TEXT NOT NULL,
		checksum          CHAR(96) NOT NULL,
		metadata          JSONB,
		recorded_at       TIMESTAMPTZ NOT NULL,
		UNIQUE (inventory_scope, inventory_id, action_type_id, recorded_at)
	)`,

	`CREATE TABLE IF NOT EXISTS allocations (
		id                 UUID PRIMARY KEY,
		order_item_id      TEXT NOT NULL,
		inventory_id       UUID NOT NULL REFERENCES inventory_records(id),
		requested_quantity NUMERIC(18,3) NOT NULL CHECK (requested_quantity > 0),
		allocated_quantity NUMERIC(18,3) NOT NULL CHECK (allocated_quantity >= 0),
		status             TEXT NOT NULL CHECK (status IN ('PENDING', 'CONFIRMED', 'PARTIAL', 'COMPLETED', 'CANCELLED', 'FULFILLED')),
		actor_id           TEXT NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS order_fulfillments (
		id               UUID PRIMARY KEY,
		order_item_id    TEXT NOT NULL,
		allocation_id    UUID NOT NULL REFERENCES allocations(id),
		shipment_id      TEXT NOT NULL,
		quantity_shipped NUMERIC(18,3) NOT NULL CHECK (quantity_shipped > 0),
		status           TEXT NOT NULL CHECK (status IN ('PENDING', 'PACKED', 'SHIPPED', 'DELIVERED', 'RETURNED', 'CANCELLED')),
		actor_id         TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (order_item_id, shipment_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activity_log_inventory
		ON activity_log_entries (inventory_scope, inventory_id, recorded_at)`,

	`CREATE INDEX IF NOT EXISTS idx_lot_adjustments_inventory
		ON lot_adjustments (inventory_id, recorded_at)`,

	`CREATE INDEX IF NOT EXISTS idx_allocations_order_item
		ON allocations (order_item_id)`,

	`CREATE INDEX IF NOT EXISTS idx_fulfillments_allocation
		ON order_fulfillments (allocation_id)`,

	`CREATE INDEX IF NOT EXISTS idx_fulfillments_order_item
		ON order_fulfillments (order_item_id)`,
}

// ApplySchema ejecuta el DDL completo dentro de una transacción.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("iniciar transacción de esquema: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range schemaStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("aplicar esquema: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("confirmar esquema: %w", err)
	}
	return nil
}
