package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
)

// Ámbitos de una fila de inventario: nivel bodega o nivel ubicación.
const (
	ScopeWarehouse = "WAREHOUSE"
	ScopeLocation  = "LOCATION"
)

// Estados de inventario.
const (
	InventoryStatusActive     = "ACTIVE"
	InventoryStatusOnHold     = "ON_HOLD"
	InventoryStatusQuarantine = "QUARANTINE"
)

// ScopeRef ubica una fila de inventario: exactamente una bodega o una
// ubicación, según el discriminador Scope.
type ScopeRef struct {
	Scope string
	RefID string
}

// NewScopeRef construye el ámbito validando el discriminador y el id.
func NewScopeRef(scope, refID string) (ScopeRef, error) {
	ref := ScopeRef{Scope: scope, RefID: refID}
	if err := ref.Validate(); err != nil {
		return ScopeRef{}, err
	}
	return ref, nil
}

// Validate verifica que el ámbito sea bodega o ubicación y tenga id.
func (s ScopeRef) Validate() error {
	if s.Scope != ScopeWarehouse && s.Scope != ScopeLocation {
		return domain.ErrInvalidInput
	}
	if s.RefID == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// InventoryRecord es el estado vigente de un lote en una bodega o ubicación:
// cantidad en mano y cantidad reservada contra asignaciones abiertas.
// Invariantes: Quantity >= 0, ReservedQuantity >= 0 y
// ReservedQuantity <= Quantity.
type InventoryRecord struct {
	ID               string
	Scope            ScopeRef
	Batch            BatchRef
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	StatusID         string
	StatusDate       time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Ref devuelve la referencia etiquetada que usa el libro de actividades.
func (r *InventoryRecord) Ref() InventoryRef {
	return InventoryRef{Scope: r.Scope.Scope, InventoryID: r.ID}
}

// Available es la cantidad en mano no comprometida en reservas.
func (r *InventoryRecord) Available() decimal.Decimal {
	return r.Quantity.Sub(r.ReservedQuantity)
}

// ApplyDelta suma un delta firmado a la cantidad en mano. Rechaza con
// ErrInsufficientQuantity si el resultado quedaría negativo y con
// ErrConflict si dejaría la reserva por encima de la cantidad.
func (r *InventoryRecord) ApplyDelta(delta decimal.Decimal) error {
	next := r.Quantity.Add(delta)
	if next.IsNegative() {
		return domain.ErrInsufficientQuantity
	}
	if r.ReservedQuantity.GreaterThan(next) {
		return domain.ErrConflict
	}
	r.Quantity = next
	return nil
}

// Reserve aparta cantidad contra una asignación sin retirarla del inventario.
func (r *InventoryRecord) Reserve(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidInput
	}
	if r.Available().LessThan(qty) {
		return domain.ErrInsufficientAvailable
	}
	r.ReservedQuantity = r.ReservedQuantity.Add(qty)
	return nil
}

// ReleaseReservation revierte una reserva (cancelación de asignación).
func (r *InventoryRecord) ReleaseReservation(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidInput
	}
	if r.ReservedQuantity.LessThan(qty) {
		return domain.ErrConflict
	}
	r.ReservedQuantity = r.ReservedQuantity.Sub(qty)
	return nil
}

// ConsumeReservation convierte reserva en salida real: descuenta la misma
// cantidad de la reserva y de la cantidad en mano.
func (r *InventoryRecord) ConsumeReservation(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidInput
	}
	if r.ReservedQuantity.LessThan(qty) {
		return domain.ErrConflict
	}
	if r.Quantity.LessThan(qty) {
		return domain.ErrInsufficientQuantity
	}
	r.ReservedQuantity = r.ReservedQuantity.Sub(qty)
	r.Quantity = r.Quantity.Sub(qty)
	return nil
}
