package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ajuste de lote (catálogo adjustment_types).
const (
	AdjustmentTypeDamaged    = "DAMAGED"           // mercancía dañada
	AdjustmentTypeLost       = "LOST"              // pérdida o extravío
	AdjustmentTypeReturned   = "RETURNED"          // devolución reingresada
	AdjustmentTypeCorrection = "MANUAL_CORRECTION" // corrección manual
	AdjustmentTypeCycleCount = "CYCLE_COUNT"       // conteo cíclico
	AdjustmentTypeShipment   = "ORDER_SHIPMENT"    // salida por envío de pedido
)

// LotAdjustment registra una corrección razonada sobre la cantidad de un lote.
// Inmutable: una corrección posterior es un nuevo ajuste, nunca una edición.
// Invariantes: AdjustedQuantity != 0 y NewQuantity = PreviousQuantity +
// AdjustedQuantity >= 0.
type LotAdjustment struct {
	ID               string
	InventoryID      string
	AdjustmentTypeID string
	PreviousQuantity decimal.Decimal
	AdjustedQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	ActorID          string
	Comments         string
	RecordedAt       time.Time
}
