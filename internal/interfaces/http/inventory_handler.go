package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP del inventario: filas por
// (ámbito, lote), ajustes, traslados y el libro de actividades (protegido).
type InventoryHandler struct {
	store    *inventory.StoreUseCase
	query    *inventory.QueryUseCase
	adjust   *inventory.AdjustUseCase
	transfer *inventory.TransferUseCase
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	store *inventory.StoreUseCase,
	query *inventory.QueryUseCase,
	adjust *inventory.AdjustUseCase,
	transfer *inventory.TransferUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{store: store, query: query, adjust: adjust, transfer: transfer, log: log}
}

// GetOrCreate godoc
// @Summary      Obtener o crear la fila de inventario de un (ámbito, lote)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GetOrCreateInventoryRequest  true  "scope, scope_ref_id, batch_kind, batch_id"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/inventory [post]
func (h *InventoryHandler) GetOrCreate(c *fiber.Ctx) error {
	var in dto.GetOrCreateInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	scope, err := entity.NewScopeRef(in.Scope, in.ScopeRefID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	batch, err := entity.NewBatchRef(in.BatchKind, in.BatchID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	rec, err := h.store.GetOrCreate(c.Context(), scope, batch)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewInventoryRecordResponse(rec))
}

// GetByID godoc
// @Summary      Cantidad vigente de una fila de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la fila de inventario"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	rec, err := h.query.GetCurrentQuantity(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewInventoryRecordResponse(rec))
}

// ListByScope godoc
// @Summary      Listar filas de inventario de una bodega o ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        scope         query  string  true   "WAREHOUSE | LOCATION"
// @Param        scope_ref_id  query  string  true   "ID de la bodega o ubicación"
// @Param        limit         query  int     false  "Tamaño de página (default 20)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.InventoryRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory [get]
func (h *InventoryHandler) ListByScope(c *fiber.Ctx) error {
	scope, err := entity.NewScopeRef(c.Query("scope"), c.Query("scope_ref_id"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.query.ListByScope(c.Context(), scope, page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	out := make([]dto.InventoryRecordResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, dto.NewInventoryRecordResponse(rec))
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajustar la cantidad de un lote con motivo y actor
// @Description  Aplica un delta firmado sobre la fila, registra el ajuste y
//
//	asienta la entrada del libro en una sola transacción.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la fila de inventario"
// @Param        body  body  dto.AdjustInventoryRequest  true  "adjustment_type_id, delta, comment, expected_previous, recorded_at"
// @Success      201  {object}  dto.LotAdjustmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{id}/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	var recordedAt time.Time
	if in.RecordedAt != nil {
		recordedAt = *in.RecordedAt
	}
	adj, err := h.adjust.Adjust(c.Context(), inventory.AdjustInput{
		InventoryID:      c.Params("id"),
		AdjustmentTypeID: in.AdjustmentTypeID,
		Delta:            in.Delta,
		ActorID:          GetActorID(c),
		Comment:          in.Comment,
		ExpectedPrevious: in.ExpectedPrevious,
		RecordedAt:       recordedAt,
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLotAdjustmentResponse(adj))
}

// GetAdjustments godoc
// @Summary      Listar ajustes de una fila de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la fila de inventario"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Tamaño de página (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.LotAdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{id}/adjustments [get]
func (h *InventoryHandler) GetAdjustments(c *fiber.Ctx) error {
	var rng dto.RangeRequest
	if err := c.QueryParser(&rng); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.query.GetAdjustments(c.Context(), c.Params("id"), rng.From, rng.To, page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	out := make([]dto.LotAdjustmentResponse, 0, len(list))
	for _, adj := range list {
		out = append(out, dto.NewLotAdjustmentResponse(adj))
	}
	return c.JSON(out)
}

// Transfer godoc
// @Summary      Trasladar cantidad entre dos filas del mismo lote
// @Description  Descuenta del origen y suma al destino en una sola
//
//	transacción; el libro registra salida y entrada con la misma marca.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferInventoryRequest  true  "from_inventory_id, to_inventory_id, quantity, comment, recorded_at"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	var recordedAt time.Time
	if in.RecordedAt != nil {
		recordedAt = *in.RecordedAt
	}
	res, err := h.transfer.Transfer(c.Context(), inventory.TransferInput{
		FromInventoryID: in.FromInventoryID,
		ToInventoryID:   in.ToInventoryID,
		Quantity:        in.Quantity,
		ActorID:         GetActorID(c),
		Comment:         in.Comment,
		RecordedAt:      recordedAt,
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transfer_id": res.TransferID,
		"from":        dto.NewInventoryRecordResponse(res.From),
		"to":          dto.NewInventoryRecordResponse(res.To),
	})
}

// GetLedger godoc
// @Summary      Libro de actividades de una fila de inventario
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la fila de inventario"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Tamaño de página (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.LedgerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{id}/ledger [get]
func (h *InventoryHandler) GetLedger(c *fiber.Ctx) error {
	var rng dto.RangeRequest
	if err := c.QueryParser(&rng); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	entries, total, err := h.query.GetLedger(c.Context(), c.Params("id"), rng.From, rng.To, page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	out := dto.LedgerResponse{
		Entries: make([]dto.ActivityLogEntryResponse, 0, len(entries)),
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, dto.NewActivityLogEntryResponse(e))
	}
	return c.JSON(out)
}

// VerifyLedger godoc
// @Summary      Verificar las huellas del libro de una fila de inventario
// @Description  Recalcula el checksum de cada entrada del rango y reporta las
//
//	que no verifican. No corrige nada.
//
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID de la fila de inventario"
// @Param        from  query  string  false  "Desde (RFC3339)"
// @Param        to    query  string  false  "Hasta (RFC3339)"
// @Success      200  {object}  dto.VerifyLedgerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{id}/ledger/verify [get]
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	var rng dto.RangeRequest
	if err := c.QueryParser(&rng); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido"})
	}
	report, err := h.query.VerifyLedger(c.Context(), c.Params("id"), rng.From, rng.To)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.VerifyLedgerResponse{
		InventoryID: report.InventoryID,
		Checked:     report.Checked,
		Violations:  report.Violations,
	})
}
