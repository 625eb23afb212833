package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/allocation"
	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/application/registry"
	"github.com/jhoicas/Kardex-api/internal/application/warehouse"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Store      *inventory.StoreUseCase
	Query      *inventory.QueryUseCase
	Adjust     *inventory.AdjustUseCase
	Transfer   *inventory.TransferUseCase
	Allocation *allocation.UseCase
	Registry   *registry.UseCase
	Warehouse  *warehouse.UseCase
	Log        *logger.Logger
	JWTSecret  string
}

// Router registra las rutas de la API. Toda ruta exige Bearer Token; las
// escrituras además exigen rol: el personal de bodega opera el inventario
// físico y las ventas operan las asignaciones.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1", AuthMiddleware(deps.JWTSecret))

	warehouseOnly := RequireRole("admin", "bodeguero")
	salesOnly := RequireRole("admin", "vendedor")

	// Warehouses y ubicaciones (topología de ámbitos)
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.Warehouse, deps.Log)
	warehouses.Post("/", RequireRole("admin"), warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Post("/:id/locations", RequireRole("admin"), warehouseHandler.CreateLocation)
	warehouses.Get("/:id/locations", warehouseHandler.ListLocations)

	// Registro de lotes
	batches := api.Group("/batches")
	batchHandler := NewBatchHandler(deps.Registry, deps.Log)
	batches.Post("/", warehouseOnly, batchHandler.Register)
	batches.Get("/:kind/:batch_id", batchHandler.Resolve)

	// Inventario: filas por (ámbito, lote), ajustes, traslados y libro
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Store, deps.Query, deps.Adjust, deps.Transfer, deps.Log)
	inv.Post("/", warehouseOnly, inventoryHandler.GetOrCreate)
	inv.Get("/", inventoryHandler.ListByScope)
	inv.Post("/transfers", warehouseOnly, inventoryHandler.Transfer)
	inv.Get("/:id", inventoryHandler.GetByID)
	inv.Post("/:id/adjustments", warehouseOnly, inventoryHandler.Adjust)
	inv.Get("/:id/adjustments", inventoryHandler.GetAdjustments)
	inv.Get("/:id/ledger", inventoryHandler.GetLedger)
	inv.Get("/:id/ledger/verify", inventoryHandler.VerifyLedger)

	// Asignaciones contra líneas de pedido
	allocations := api.Group("/allocations")
	allocationHandler := NewAllocationHandler(deps.Allocation, deps.Log)
	allocations.Post("/", salesOnly, allocationHandler.Confirm)
	allocations.Get("/", allocationHandler.ListByOrderItem)
	allocations.Get("/:id", allocationHandler.GetByID)
	allocations.Post("/:id/topup", salesOnly, allocationHandler.TopUp)
	allocations.Post("/:id/cancel", salesOnly, allocationHandler.Cancel)
	allocations.Get("/:id/fulfillments", allocationHandler.ListFulfillments)

	// Cumplimientos: ciclo planear → empacar → enviar → entregar/devolver
	fulfillments := api.Group("/fulfillments")
	fulfillmentHandler := NewFulfillmentHandler(deps.Allocation, deps.Log)
	fulfillments.Post("/", warehouseOnly, fulfillmentHandler.Plan)
	fulfillments.Post("/ship", warehouseOnly, fulfillmentHandler.Ship)
	fulfillments.Get("/:id", fulfillmentHandler.GetByID)
	fulfillments.Post("/:id/packed", warehouseOnly, fulfillmentHandler.MarkPacked)
	fulfillments.Post("/:id/delivered", warehouseOnly, fulfillmentHandler.MarkDelivered)
	fulfillments.Post("/:id/returned", warehouseOnly, fulfillmentHandler.MarkReturned)
}
