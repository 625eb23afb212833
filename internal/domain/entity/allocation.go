package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una asignación de inventario contra una línea de pedido.
const (
	AllocationStatusPending   = "PENDING"
	AllocationStatusConfirmed = "CONFIRMED"
	AllocationStatusPartial   = "PARTIAL"   // reservado menos de lo pedido
	AllocationStatusCompleted = "COMPLETED" // reserva convertida en salida
	AllocationStatusFulfilled = "FULFILLED" // entregas confirmadas
	AllocationStatusCancelled = "CANCELLED"
)

// Transiciones permitidas por estado. Cancelar solo aplica a estados no terminales.
var allocationTransitions = map[string][]string{
	AllocationStatusPending:   {AllocationStatusConfirmed, AllocationStatusPartial, AllocationStatusCancelled},
	AllocationStatusConfirmed: {AllocationStatusCompleted, AllocationStatusCancelled},
	AllocationStatusPartial:   {AllocationStatusConfirmed, AllocationStatusCompleted, AllocationStatusCancelled},
	AllocationStatusCompleted: {AllocationStatusFulfilled},
}

// Allocation reserva inventario contra una línea de pedido y registra cuánto
// quedó efectivamente apartado. AllocatedQuantity puede ser menor que
// RequestedQuantity (estado PARTIAL); la diferencia nunca se descuenta en
// silencio.
type Allocation struct {
	ID                string
	OrderItemID       string
	InventoryID       string
	RequestedQuantity decimal.Decimal
	AllocatedQuantity decimal.Decimal
	Status            string
	ActorID           string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CanTransitionTo indica si el paso de estado es legal en la máquina.
func (a *Allocation) CanTransitionTo(status string) bool {
	for _, next := range allocationTransitions[a.Status] {
		if next == status {
			return true
		}
	}
	return false
}

// IsTerminal indica si la asignación ya no admite transiciones de negocio.
func (a *Allocation) IsTerminal() bool {
	return a.Status == AllocationStatusFulfilled || a.Status == AllocationStatusCancelled
}
