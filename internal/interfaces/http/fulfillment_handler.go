package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/allocation"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// FulfillmentHandler maneja las peticiones HTTP del ciclo de cumplimiento:
// planear, empacar, enviar, entregar y devolver (protegido).
type FulfillmentHandler struct {
	uc  *allocation.UseCase
	log *logger.Logger
}

// NewFulfillmentHandler construye el handler.
func NewFulfillmentHandler(uc *allocation.UseCase, log *logger.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{uc: uc, log: log}
}

// Plan godoc
// @Summary      Planear el cumplimiento de una línea dentro de un envío
// @Description  Crea el cumplimiento en PENDING sin mover inventario. La
//
//	cantidad queda comprometida contra la asignación.
//
// @Tags         fulfillments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PlanFulfillmentRequest  true  "order_item_id, allocation_id, shipment_id, quantity"
// @Success      201  {object}  dto.FulfillmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/fulfillments [post]
func (h *FulfillmentHandler) Plan(c *fiber.Ctx) error {
	var in dto.PlanFulfillmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	f, err := h.uc.PlanShipment(c.Context(), allocation.PlanShipmentInput{
		OrderItemID:  in.OrderItemID,
		AllocationID: in.AllocationID,
		ShipmentID:   in.ShipmentID,
		Quantity:     in.Quantity,
		ActorID:      GetActorID(c),
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewFulfillmentResponse(f))
}

// Ship godoc
// @Summary      Registrar la salida física de una línea en un envío
// @Description  Convierte reserva en salida: descuenta cantidad y reserva,
//
//	asienta el ajuste de salida y la entrada del libro. Si el cumplimiento
//	estaba planeado, lo transiciona; si no, lo crea directo en SHIPPED.
//
// @Tags         fulfillments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordShipmentRequest  true  "order_item_id, allocation_id, shipment_id, quantity, recorded_at"
// @Success      201  {object}  dto.FulfillmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/fulfillments/ship [post]
func (h *FulfillmentHandler) Ship(c *fiber.Ctx) error {
	var in dto.RecordShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	var recordedAt time.Time
	if in.RecordedAt != nil {
		recordedAt = *in.RecordedAt
	}
	f, err := h.uc.RecordShipment(c.Context(), allocation.RecordShipmentInput{
		OrderItemID:  in.OrderItemID,
		AllocationID: in.AllocationID,
		ShipmentID:   in.ShipmentID,
		Quantity:     in.Quantity,
		ActorID:      GetActorID(c),
		RecordedAt:   recordedAt,
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewFulfillmentResponse(f))
}

// GetByID godoc
// @Summary      Obtener un cumplimiento
// @Tags         fulfillments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del cumplimiento"
// @Success      200  {object}  dto.FulfillmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/fulfillments/{id} [get]
func (h *FulfillmentHandler) GetByID(c *fiber.Ctx) error {
	f, err := h.uc.GetFulfillment(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewFulfillmentResponse(f))
}

// MarkPacked godoc
// @Summary      Marcar un cumplimiento como empacado
// @Tags         fulfillments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del cumplimiento"
// @Success      200  {object}  dto.FulfillmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/fulfillments/{id}/packed [post]
func (h *FulfillmentHandler) MarkPacked(c *fiber.Ctx) error {
	f, err := h.uc.MarkPacked(c.Context(), c.Params("id"), GetActorID(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewFulfillmentResponse(f))
}

// MarkDelivered godoc
// @Summary      Marcar un cumplimiento como entregado
// @Description  Si con esta entrega la asignación completó todas sus
//
//	entregas, la promueve a FULFILLED.
//
// @Tags         fulfillments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del cumplimiento"
// @Success      200  {object}  dto.FulfillmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/fulfillments/{id}/delivered [post]
func (h *FulfillmentHandler) MarkDelivered(c *fiber.Ctx) error {
	f, err := h.uc.MarkDelivered(c.Context(), c.Params("id"), GetActorID(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewFulfillmentResponse(f))
}

// MarkReturned godoc
// @Summary      Marcar un cumplimiento como devuelto
// @Description  No reingresa cantidades: el reingreso físico se asienta
//
//	aparte como un ajuste RETURNED sobre la fila de inventario.
//
// @Tags         fulfillments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del cumplimiento"
// @Success      200  {object}  dto.FulfillmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/fulfillments/{id}/returned [post]
func (h *FulfillmentHandler) MarkReturned(c *fiber.Ctx) error {
	f, err := h.uc.MarkReturned(c.Context(), c.Params("id"), GetActorID(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewFulfillmentResponse(f))
}
