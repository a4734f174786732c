package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// InventoryHandler maneja movimientos de stock y la auditoría por producto.
type InventoryHandler struct {
	svc *inventory.Service
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc *inventory.Service, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, log: log}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, movement_type (IN|OUT), quantity"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	m, err := h.svc.RecordMovement(c.UserContext(), inventory.RecordMovementInput{
		ProductID: in.ProductID,
		Type:      entity.MovementType(strings.ToUpper(in.MovementType)),
		Quantity:  in.Quantity,
		Note:      in.Note,
		Actor:     GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockMovementFromEntity(m))
}

// ListMovements godoc
// @Summary      Listar movimientos de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "UUID del producto"
// @Param        movement_type  query  string  false  "IN | OUT"
// @Param        date_from      query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        date_to        query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        page           query  int     false  "default 1"
// @Param        page_size      query  int     false  "default 50, máx 500"
// @Param        ordering       query  string  false  "created_at | quantity, prefijo - para desc"
// @Success      200  {object}  dto.PageResponse[dto.StockMovementResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page, err := h.svc.ListMovements(c.UserContext(), inventory.MovementFilter{
		ProductID: c.Query("product_id"),
		Type:      c.Query("movement_type"),
		From:      c.Query("date_from"),
		To:        c.Query("date_to"),
		Page:      c.Query("page"),
		PageSize:  c.Query("page_size"),
		Ordering:  c.Query("ordering"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPage(page, dto.StockMovementFromEntity))
}

// StockAudit godoc
// @Summary      Auditoría de stock de un producto
// @Description  Compara el stock materializado contra la suma de movimientos IN - OUT.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID del producto"
// @Success      200  {object}  dto.StockAuditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/audit [get]
func (h *InventoryHandler) StockAudit(c *fiber.Ctx) error {
	a, err := h.svc.StockAudit(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.StockAuditFromEntity(a))
}
