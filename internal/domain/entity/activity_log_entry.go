package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
)

// Tipos de acción del libro de actividades (catálogo action_types).
const (
	ActionTypeAdjustment          = "ADJUSTMENT"
	ActionTypeSale                = "SALE"
	ActionTypeTransferIn          = "TRANSFER_IN"
	ActionTypeTransferOut         = "TRANSFER_OUT"
	ActionTypeAllocationConfirmed = "ALLOCATION_CONFIRMED"
	ActionTypeAllocationFulfilled = "ALLOCATION_FULFILLED"
	ActionTypeAllocationCancelled = "ALLOCATION_CANCELLED"
)

// InventoryRef referencia la fila de inventario afectada por una entrada del
// libro: el discriminador Scope indica si apunta a inventario de bodega o de
// ubicación, espejo del patrón de BatchRef.
type InventoryRef struct {
	Scope       string
	InventoryID string
}

// Validate verifica el invariante del tipo etiquetado.
func (r InventoryRef) Validate() error {
	if r.Scope != ScopeWarehouse && r.Scope != ScopeLocation {
		return domain.ErrInvalidInput
	}
	if r.InventoryID == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// ActivityLogEntry es el registro canónico de un cambio de cantidad,
// independiente de su causa (ajuste, asignación, traslado, venta).
// Solo se inserta, nunca se actualiza ni se borra: la unicidad sobre
// (inventario, tipo de acción, RecordedAt) hace idempotentes los reintentos.
type ActivityLogEntry struct {
	ID               string
	Inventory        InventoryRef
	ActionTypeID     string
	PreviousQuantity decimal.Decimal
	QuantityChange   decimal.Decimal
	NewQuantity      decimal.Decimal
	StatusID         string
	ActorID          string
	Checksum         string
	Metadata         map[string]any
	RecordedAt       time.Time
}
