package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ConfirmAllocationRequest body para POST /api/v1/allocations.
// AllowPartial permite reservar menos de lo pedido cuando no hay disponible
// completo; el faltante queda registrado, nunca se descuenta en silencio.
// RecordedAt es la marca lógica: un reintento externo repite la misma marca.
type ConfirmAllocationRequest struct {
	OrderItemID  string          `json:"order_item_id"`
	InventoryID  string          `json:"inventory_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	AllowPartial bool            `json:"allow_partial,omitempty"`
	RecordedAt   *time.Time      `json:"recorded_at,omitempty"`
}

// CancelAllocationRequest body para POST /api/v1/allocations/:id/cancel.
type CancelAllocationRequest struct {
	Reason     string     `json:"reason,omitempty"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// TopUpAllocationRequest body para POST /api/v1/allocations/:id/topup.
type TopUpAllocationRequest struct {
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// PlanFulfillmentRequest body para POST /api/v1/fulfillments. Planifica el
// cumplimiento (estado PENDING) sin mover inventario todavía.
type PlanFulfillmentRequest struct {
	OrderItemID  string          `json:"order_item_id"`
	AllocationID string          `json:"allocation_id"`
	ShipmentID   string          `json:"shipment_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// RecordShipmentRequest body para POST /api/v1/fulfillments/ship. Registra la
// salida física: convierte reserva en salida y asienta en el libro.
type RecordShipmentRequest struct {
	OrderItemID  string          `json:"order_item_id"`
	AllocationID string          `json:"allocation_id"`
	ShipmentID   string          `json:"shipment_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	RecordedAt   *time.Time      `json:"recorded_at,omitempty"`
}

// AllocationResponse asignación con su faltante derivado.
type AllocationResponse struct {
	ID                string          `json:"id"`
	OrderItemID       string          `json:"order_item_id"`
	InventoryID       string          `json:"inventory_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	AllocatedQuantity decimal.Decimal `json:"allocated_quantity"`
	Shortfall         decimal.Decimal `json:"shortfall"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewAllocationResponse mapea la entidad a la respuesta HTTP.
func NewAllocationResponse(a *entity.Allocation) AllocationResponse {
	return AllocationResponse{
		ID:                a.ID,
		OrderItemID:       a.OrderItemID,
		InventoryID:       a.InventoryID,
		RequestedQuantity: a.RequestedQuantity,
		AllocatedQuantity: a.AllocatedQuantity,
		Shortfall:         a.RequestedQuantity.Sub(a.AllocatedQuantity),
		Status:            a.Status,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// FulfillmentResponse cumplimiento de una línea de pedido en un envío.
type FulfillmentResponse struct {
	ID              string          `json:"id"`
	OrderItemID     string          `json:"order_item_id"`
	AllocationID    string          `json:"allocation_id"`
	ShipmentID      string          `json:"shipment_id"`
	QuantityShipped decimal.Decimal `json:"quantity_shipped"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewFulfillmentResponse mapea la entidad a la respuesta HTTP.
func NewFulfillmentResponse(f *entity.OrderFulfillment) FulfillmentResponse {
	return FulfillmentResponse{
		ID:              f.ID,
		OrderItemID:     f.OrderItemID,
		AllocationID:    f.AllocationID,
		ShipmentID:      f.ShipmentID,
		QuantityShipped: f.QuantityShipped,
		Status:          f.Status,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// RegisterBatchRequest body para POST /api/v1/batches.
type RegisterBatchRequest struct {
	Kind    string `json:"kind"` // PRODUCT | PACKAGING_MATERIAL
	BatchID string `json:"batch_id"`
}

// BatchResponse alta del registro de lotes.
type BatchResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	BatchID   string    `json:"batch_id"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBatchResponse mapea la entidad a la respuesta HTTP.
func NewBatchResponse(e *entity.BatchRegistryEntry) BatchResponse {
	return BatchResponse{
		ID:        e.ID,
		Kind:      e.Ref.Kind,
		BatchID:   e.Ref.BatchID,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
	}
}
