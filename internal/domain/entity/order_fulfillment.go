package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de cumplimiento de una línea de pedido dentro de un envío.
const (
	FulfillmentStatusPending   = "PENDING"
	FulfillmentStatusPacked    = "PACKED"
	FulfillmentStatusShipped   = "SHIPPED"
	FulfillmentStatusDelivered = "DELIVERED" // terminal
	FulfillmentStatusCancelled = "CANCELLED" // terminal
	FulfillmentStatusReturned  = "RETURNED"  // terminal
)

// Cada transición hacia adelante la dispara un evento de envío externo.
var fulfillmentTransitions = map[string][]string{
	FulfillmentStatusPending: {FulfillmentStatusPacked, FulfillmentStatusShipped, FulfillmentStatusCancelled},
	FulfillmentStatusPacked:  {FulfillmentStatusShipped, FulfillmentStatusCancelled},
	FulfillmentStatusShipped: {FulfillmentStatusDelivered, FulfillmentStatusReturned},
}

// OrderFulfillment vincula una línea de pedido, su asignación y un envío.
// Invariantes: QuantityShipped >= 0; unicidad sobre (línea de pedido, envío)
// para que una línea no se cuente dos veces dentro del mismo envío.
type OrderFulfillment struct {
	ID              string
	OrderItemID     string
	AllocationID    string
	ShipmentID      string
	QuantityShipped decimal.Decimal
	Status          string
	ActorID         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanTransitionTo indica si el paso de estado es legal en la máquina.
func (f *OrderFulfillment) CanTransitionTo(status string) bool {
	for _, next := range fulfillmentTransitions[f.Status] {
		if next == status {
			return true
		}
	}
	return false
}

// IsTerminal indica si el cumplimiento llegó a un estado final.
func (f *OrderFulfillment) IsTerminal() bool {
	switch f.Status {
	case FulfillmentStatusDelivered, FulfillmentStatusCancelled, FulfillmentStatusReturned:
		return true
	}
	return false
}
