package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location representa una ubicación física dentro de una bodega (pasillo,
// estante o posición). El inventario puede llevarse a nivel bodega o ubicación.
type Location struct {
	ID          string
	WarehouseID string
	Code        string
	Name        string
	CreatedAt   time.Time
}
