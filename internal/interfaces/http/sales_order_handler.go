package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/sales"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// SalesOrderHandler órdenes de venta.
type SalesOrderHandler struct {
	svc *sales.Service
	log *logger.Logger
}

// NewSalesOrderHandler construye el handler.
func NewSalesOrderHandler(svc *sales.Service, log *logger.Logger) *SalesOrderHandler {
	return &SalesOrderHandler{svc: svc, log: log}
}

func (h *SalesOrderHandler) reply(c *fiber.Ctx, status int, so *entity.SalesOrder, err error) error {
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(status).JSON(dto.SalesOrderFromEntity(so))
}

// Create godoc
// @Summary      Crear orden de venta (DRAFT)
// @Tags         sales-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalesOrderRequest  true  "customer_name"
// @Success      201   {object}  dto.SalesOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales-orders [post]
func (h *SalesOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSalesOrderRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	so, err := h.svc.Create(c.UserContext(), GetUserID(c), sales.CreateSalesOrderInput{
		CustomerName: in.CustomerName,
		CustomerDoc:  in.CustomerDoc,
		Note:         in.Note,
	})
	return h.reply(c, fiber.StatusCreated, so, err)
}

// Get godoc
// @Summary      Obtener orden de venta
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id} [get]
func (h *SalesOrderHandler) Get(c *fiber.Ctx) error {
	so, err := h.svc.Get(c.UserContext(), c.Params("id"))
	return h.reply(c, fiber.StatusOK, so, err)
}

// List godoc
// @Summary      Listar órdenes de venta
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "DRAFT | CONFIRMED | CANCELLED"
// @Param        date_from  query  string  false  "YYYY-MM-DD"
// @Param        date_to    query  string  false  "YYYY-MM-DD"
// @Param        page       query  int     false  "default 1"
// @Param        page_size  query  int     false  "default 50"
// @Param        ordering   query  string  false  "created_at | status | id"
// @Success      200  {object}  dto.PageResponse[dto.SalesOrderResponse]
// @Router       /api/sales-orders [get]
func (h *SalesOrderHandler) List(c *fiber.Ctx) error {
	page, err := h.svc.List(c.UserContext(), sales.ListFilter{
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
	return c.JSON(dto.NewPage(page, dto.SalesOrderFromEntity))
}

// AddLine godoc
// @Summary      Agregar línea
// @Tags         sales-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "UUID de la orden"
// @Param        body  body  dto.AddSalesLineRequest  true  "product_id, quantity, unit_price"
// @Success      200   {object}  dto.SalesOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/lines [post]
func (h *SalesOrderHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddSalesLineRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	so, err := h.svc.AddLine(c.UserContext(), c.Params("id"), sales.AddLineInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
	})
	return h.reply(c, fiber.StatusOK, so, err)
}

// UpdateLine godoc
// @Summary      Modificar línea
// @Tags         sales-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                      true  "UUID de la orden"
// @Param        lineId  path  string                      true  "UUID de la línea"
// @Param        body    body  dto.UpdateSalesLineRequest  true  "quantity, unit_price"
// @Success      200     {object}  dto.SalesOrderResponse
// @Router       /api/sales-orders/{id}/lines/{lineId} [put]
func (h *SalesOrderHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.UpdateSalesLineRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	so, err := h.svc.UpdateLine(c.UserContext(), c.Params("id"), c.Params("lineId"), sales.UpdateLineInput{
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
	})
	return h.reply(c, fiber.StatusOK, so, err)
}

// RemoveLine godoc
// @Summary      Quitar línea
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "UUID de la orden"
// @Param        lineId  path  string  true  "UUID de la línea"
// @Success      200     {object}  dto.SalesOrderResponse
// @Router       /api/sales-orders/{id}/lines/{lineId} [delete]
func (h *SalesOrderHandler) RemoveLine(c *fiber.Ctx) error {
	so, err := h.svc.RemoveLine(c.UserContext(), c.Params("id"), c.Params("lineId"))
	return h.reply(c, fiber.StatusOK, so, err)
}

// Confirm godoc
// @Summary      Confirmar venta (DRAFT -> CONFIRMED)
// @Description  Descuenta stock y crea la cuenta por cobrar en la misma transacción.
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/confirm [post]
func (h *SalesOrderHandler) Confirm(c *fiber.Ctx) error {
	so, err := h.svc.Confirm(c.UserContext(), c.Params("id"), GetUserID(c))
	return h.reply(c, fiber.StatusOK, so, err)
}

// Cancel godoc
// @Summary      Cancelar venta
// @Description  Si estaba CONFIRMED devuelve el stock y anula la cuenta por cobrar.
// @Tags         sales-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true   "UUID"
// @Param        body  body  dto.CancelSalesOrderRequest  false  "reason"
// @Success      200   {object}  dto.SalesOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/cancel [post]
func (h *SalesOrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSalesOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	so, err := h.svc.Cancel(c.UserContext(), c.Params("id"), GetUserID(c), in.Reason)
	return h.reply(c, fiber.StatusOK, so, err)
}
