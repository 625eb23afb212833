package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/registry"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// BatchHandler maneja las peticiones HTTP del registro de lotes (protegido).
type BatchHandler struct {
	uc  *registry.UseCase
	log *logger.Logger
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *registry.UseCase, log *logger.Logger) *BatchHandler {
	return &BatchHandler{uc: uc, log: log}
}

// Register godoc
// @Summary      Dar de alta un lote lógico en el registro
// @Description  El alta es inmutable e idempotente: repetir la misma
//
//	referencia devuelve el alta original.
//
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterBatchRequest  true  "kind (PRODUCT | PACKAGING_MATERIAL), batch_id"
// @Success      201  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/batches [post]
func (h *BatchHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.uc.Register(c.Context(), in.Kind, in.BatchID, GetActorID(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewBatchResponse(entry))
}

// Resolve godoc
// @Summary      Resolver una referencia de lote a su alta en el registro
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        kind      path  string  true  "PRODUCT | PACKAGING_MATERIAL"
// @Param        batch_id  path  string  true  "ID del lote físico"
// @Success      200  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/batches/{kind}/{batch_id} [get]
func (h *BatchHandler) Resolve(c *fiber.Ctx) error {
	entry, err := h.uc.Resolve(c.Context(), c.Params("kind"), c.Params("batch_id"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return c.JSON(dto.NewBatchResponse(entry))
}
