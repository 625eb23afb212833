package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/allocation"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// AllocationHandler maneja las peticiones HTTP de asignaciones (protegido).
type AllocationHandler struct {
	uc  *allocation.UseCase
	log *logger.Logger
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(uc *allocation.UseCase, log *logger.Logger) *AllocationHandler {
	return &AllocationHandler{uc: uc, log: log}
}

// Confirm godoc
// @Summary      Confirmar una asignación: apartar inventario contra una línea de pedido
// @Description  Reserva la cantidad sin retirarla. Con allow_partial aparta lo
//
//	disponible y deja la asignación PARTIAL con el faltante registrado.
//
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConfirmAllocationRequest  true  "order_item_id, inventory_id, quantity, allow_partial, recorded_at"
// @Success      201  {object}  dto.AllocationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/allocations [post]
func (h *AllocationHandler) Confirm(c *fiber.Ctx) error {
	var in dto.ConfirmAllocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	var recordedAt time.Time
	if in.RecordedAt != nil {
		recordedAt = *in.RecordedAt
	}
	alloc, err := h.uc.Confirm(c.Context(), allocation.ConfirmInput{
		OrderItemID:  in.OrderItemID,
		InventoryID:  in.InventoryID,
		Quantity:     in.Quantity,
		AllowPartial: in.AllowPartial,
		ActorID:      GetActorID(c),
		RecordedAt:   recordedAt,
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAllocationResponse(alloc))
}

// GetByID godoc
// @Summary      Obtener una asignación
// @Tags         allocations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.AllocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/allocations/{id} [get]
func (h *AllocationHandler) GetByID(c *fiber.Ctx) error {
	alloc, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewAllocationResponse(alloc))
}

// ListByOrderItem godoc
// @Summary      Listar asignaciones de una línea de pedido
// @Tags         allocations
// @Security     Bearer
// @Produce      json
// @Param        order_item_id  query  string  true  "ID de la línea de pedido"
// @Success      200  {array}   dto.AllocationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/allocations [get]
func (h *AllocationHandler) ListByOrderItem(c *fiber.Ctx) error {
	list, err := h.uc.ListByOrderItem(c.Context(), c.Query("order_item_id"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	out := make([]dto.AllocationResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.NewAllocationResponse(a))
	}
	return c.JSON(out)
}

// TopUp godoc
// @Summary      Completar la reserva de una asignación parcial
// @Description  Aparta disponible adicional para cubrir el faltante de una
//
//	asignación PARTIAL; si lo cubre, pasa a CONFIRMED.
//
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la asignación"
// @Param        body  body  dto.TopUpAllocationRequest  false  "recorded_at"
// @Success      200  {object}  dto.AllocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/allocations/{id}/topup [post]
func (h *AllocationHandler) TopUp(c *fiber.Ctx) error {
	var in dto.TopUpAllocationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	var recordedAt time.Time
	if in.RecordedAt != nil {
		recordedAt = *in.RecordedAt
	}
	alloc, err := h.uc.TopUp(c.Context(), allocation.TopUpInput{
		AllocationID: c.Params("id"),
		ActorID:      GetActorID(c),
		RecordedAt:   recordedAt,
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewAllocationResponse(alloc))
}

// Cancel godoc
// @Summary      Cancelar una asignación y liberar su reserva pendiente
// @Description  Libera lo apartado menos lo ya enviado; las salidas físicas
//
//	no se revierten.
//
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la asignación"
// @Param        body  body  dto.CancelAllocationRequest  false  "reason, recorded_at"
// @Success      200  {object}  dto.AllocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/allocations/{id}/cancel [post]
func (h *AllocationHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelAllocationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	var recordedAt time.Time
	if in.RecordedAt != nil {
		recordedAt = *in.RecordedAt
	}
	alloc, err := h.uc.Cancel(c.Context(), allocation.CancelInput{
		AllocationID: c.Params("id"),
		ActorID:      GetActorID(c),
		Reason:       in.Reason,
		RecordedAt:   recordedAt,
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewAllocationResponse(alloc))
}

// ListFulfillments godoc
// @Summary      Listar cumplimientos de una asignación
// @Tags         allocations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la asignación"
// @Success      200  {array}   dto.FulfillmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/allocations/{id}/fulfillments [get]
func (h *AllocationHandler) ListFulfillments(c *fiber.Ctx) error {
	list, err := h.uc.ListFulfillments(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	out := make([]dto.FulfillmentResponse, 0, len(list))
	for _, f := range list {
		out = append(out, dto.NewFulfillmentResponse(f))
	}
	return c.JSON(out)
}
