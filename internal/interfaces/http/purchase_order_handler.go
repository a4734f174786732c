package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/purchasing"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// PurchaseOrderHandler órdenes de compra: borrador, líneas y transiciones.
type PurchaseOrderHandler struct {
	svc *purchasing.Service
	log *logger.Logger
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(svc *purchasing.Service, log *logger.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{svc: svc, log: log}
}

func (h *PurchaseOrderHandler) reply(c *fiber.Ctx, status int, po *entity.PurchaseOrder, err error) error {
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(status).JSON(dto.PurchaseOrderFromEntity(po))
}

// Create godoc
// @Summary      Crear orden de compra (DRAFT)
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "supplier_id"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	po, err := h.svc.Create(c.UserContext(), GetUserID(c), purchasing.CreatePurchaseOrderInput{
		SupplierID:      in.SupplierID,
		SupplierInvoice: in.SupplierInvoice,
		Note:            in.Note,
	})
	return h.reply(c, fiber.StatusCreated, po, err)
}

// Get godoc
// @Summary      Obtener orden de compra con sus líneas
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) Get(c *fiber.Ctx) error {
	po, err := h.svc.Get(c.UserContext(), c.Params("id"))
	return h.reply(c, fiber.StatusOK, po, err)
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "DRAFT | CONFIRMED | RECEIVED | CANCELLED"
// @Param        date_from  query  string  false  "YYYY-MM-DD"
// @Param        date_to    query  string  false  "YYYY-MM-DD"
// @Param        page       query  int     false  "default 1"
// @Param        page_size  query  int     false  "default 50"
// @Param        ordering   query  string  false  "created_at | status | id"
// @Success      200  {object}  dto.PageResponse[dto.PurchaseOrderResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	page, err := h.svc.List(c.UserContext(), purchasing.ListFilter{
		Status:   c.Query("status"),
		From:     c.Query("date_from"),
		To:       c.Query("date_to"),
		Page:     c.Query("page"),
		PageSize: c.Query("page_size"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPage(page, dto.PurchaseOrderFromEntity))
}

// AddLine godoc
// @Summary      Agregar línea (mismo producto acumula cantidad)
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "UUID de la orden"
// @Param        body  body  dto.AddPurchaseLineRequest  true  "product_id, quantity, unit_cost"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/lines [post]
func (h *PurchaseOrderHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddPurchaseLineRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	po, err := h.svc.AddLine(c.UserContext(), c.Params("id"), purchasing.AddLineInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
	})
	return h.reply(c, fiber.StatusOK, po, err)
}

// UpdateLine godoc
// @Summary      Modificar línea
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                         true  "UUID de la orden"
// @Param        lineId  path  string                         true  "UUID de la línea"
// @Param        body    body  dto.UpdatePurchaseLineRequest  true  "quantity, unit_cost"
// @Success      200     {object}  dto.PurchaseOrderResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/lines/{lineId} [put]
func (h *PurchaseOrderHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.UpdatePurchaseLineRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	po, err := h.svc.UpdateLine(c.UserContext(), c.Params("id"), c.Params("lineId"), purchasing.UpdateLineInput{
		Quantity: in.Quantity,
		UnitCost: in.UnitCost,
	})
	return h.reply(c, fiber.StatusOK, po, err)
}

// RemoveLine godoc
// @Summary      Quitar línea
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "UUID de la orden"
// @Param        lineId  path  string  true  "UUID de la línea"
// @Success      200     {object}  dto.PurchaseOrderResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/lines/{lineId} [delete]
func (h *PurchaseOrderHandler) RemoveLine(c *fiber.Ctx) error {
	po, err := h.svc.RemoveLine(c.UserContext(), c.Params("id"), c.Params("lineId"))
	return h.reply(c, fiber.StatusOK, po, err)
}

// Confirm godoc
// @Summary      Confirmar orden (DRAFT -> CONFIRMED)
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/confirm [post]
func (h *PurchaseOrderHandler) Confirm(c *fiber.Ctx) error {
	po, err := h.svc.Confirm(c.UserContext(), c.Params("id"), GetUserID(c))
	return h.reply(c, fiber.StatusOK, po, err)
}

// Receive godoc
// @Summary      Recibir mercancía (CONFIRMED -> RECEIVED)
// @Description  Registra las entradas de stock y la cuenta por pagar en la misma transacción.
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	po, err := h.svc.Receive(c.UserContext(), c.Params("id"), GetUserID(c))
	return h.reply(c, fiber.StatusOK, po, err)
}

// Cancel godoc
// @Summary      Cancelar orden (DRAFT o CONFIRMED)
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	po, err := h.svc.Cancel(c.UserContext(), c.Params("id"), GetUserID(c))
	return h.reply(c, fiber.StatusOK, po, err)
}
