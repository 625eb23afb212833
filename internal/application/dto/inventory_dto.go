package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// AdjustInventoryRequest body para POST /api/v1/inventory/:id/adjustments.
// RecordedAt es la marca lógica del ajuste: un reintento externo debe repetir
// la misma marca para que la operación sea idempotente.
type AdjustInventoryRequest struct {
	AdjustmentTypeID string           `json:"adjustment_type_id"`
	Delta            decimal.Decimal  `json:"delta"`
	Comment          string           `json:"comment,omitempty"`
	ExpectedPrevious *decimal.Decimal `json:"expected_previous,omitempty"`
	RecordedAt       *time.Time       `json:"recorded_at,omitempty"`
}

// TransferInventoryRequest body para POST /api/v1/inventory/transfers.
type TransferInventoryRequest struct {
	FromInventoryID string          `json:"from_inventory_id"`
	ToInventoryID   string          `json:"to_inventory_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Comment         string          `json:"comment,omitempty"`
	RecordedAt      *time.Time      `json:"recorded_at,omitempty"`
}

// GetOrCreateInventoryRequest body para POST /api/v1/inventory.
type GetOrCreateInventoryRequest struct {
	Scope      string `json:"scope"`       // WAREHOUSE | LOCATION
	ScopeRefID string `json:"scope_ref_id"`
	BatchKind  string `json:"batch_kind"` // PRODUCT | PACKAGING_MATERIAL
	BatchID    string `json:"batch_id"`
}

// InventoryRecordResponse fila de inventario con la cantidad disponible derivada.
type InventoryRecordResponse struct {
	ID                string          `json:"id"`
	Scope             string          `json:"scope"`
	ScopeRefID        string          `json:"scope_ref_id"`
	BatchKind         string          `json:"batch_kind"`
	BatchID           string          `json:"batch_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	StatusID          string          `json:"status_id"`
	StatusDate        time.Time       `json:"status_date"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewInventoryRecordResponse mapea la entidad a la respuesta HTTP.
func NewInventoryRecordResponse(r *entity.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		ID:                r.ID,
		Scope:             r.Scope.Scope,
		ScopeRefID:        r.Scope.RefID,
		BatchKind:         r.Batch.Kind,
		BatchID:           r.Batch.BatchID,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.Available(),
		StatusID:          r.StatusID,
		StatusDate:        r.StatusDate,
		UpdatedAt:         r.UpdatedAt,
	}
}

// LotAdjustmentResponse ajuste persistido, con la conservación visible
// (new = previous + adjusted).
type LotAdjustmentResponse struct {
	ID               string          `json:"id"`
	InventoryID      string          `json:"inventory_id"`
	AdjustmentTypeID string          `json:"adjustment_type_id"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	AdjustedQuantity decimal.Decimal `json:"adjusted_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	ActorID          string          `json:"actor_id"`
	Comments         string          `json:"comments,omitempty"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

// NewLotAdjustmentResponse mapea la entidad a la respuesta HTTP.
func NewLotAdjustmentResponse(a *entity.LotAdjustment) LotAdjustmentResponse {
	return LotAdjustmentResponse{
		ID:               a.ID,
		InventoryID:      a.InventoryID,
		AdjustmentTypeID: a.AdjustmentTypeID,
		PreviousQuantity: a.PreviousQuantity,
		AdjustedQuantity: a.AdjustedQuantity,
		NewQuantity:      a.NewQuantity,
		ActorID:          a.ActorID,
		Comments:         a.Comments,
		RecordedAt:       a.RecordedAt,
	}
}

// ActivityLogEntryResponse entrada del libro de actividades.
type ActivityLogEntryResponse struct {
	ID               string          `json:"id"`
	Scope            string          `json:"scope"`
	InventoryID      string          `json:"inventory_id"`
	ActionTypeID     string          `json:"action_type_id"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	QuantityChange   decimal.Decimal `json:"quantity_change"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	StatusID         string          `json:"status_id,omitempty"`
	ActorID          string          `json:"actor_id"`
	Checksum         string          `json:"checksum"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

// NewActivityLogEntryResponse mapea la entidad a la respuesta HTTP.
func NewActivityLogEntryResponse(e *entity.ActivityLogEntry) ActivityLogEntryResponse {
	return ActivityLogEntryResponse{
		ID:               e.ID,
		Scope:            e.Inventory.Scope,
		InventoryID:      e.Inventory.InventoryID,
		ActionTypeID:     e.ActionTypeID,
		PreviousQuantity: e.PreviousQuantity,
		QuantityChange:   e.QuantityChange,
		NewQuantity:      e.NewQuantity,
		StatusID:         e.StatusID,
		ActorID:          e.ActorID,
		Checksum:         e.Checksum,
		Metadata:         e.Metadata,
		RecordedAt:       e.RecordedAt,
	}
}

// LedgerResponse página del libro de un inventario.
type LedgerResponse struct {
	Entries []ActivityLogEntryResponse `json:"entries"`
	Page    PageResponse               `json:"page"`
}

// VerifyLedgerResponse resultado de la verificación de huellas de un rango.
type VerifyLedgerResponse struct {
	InventoryID string   `json:"inventory_id"`
	Checked     int      `json:"checked"`
	Violations  []string `json:"violations,omitempty"` // IDs de entradas con huella inválida
}
