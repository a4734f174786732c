package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// FinanceHandler cuentas por pagar y por cobrar.
type FinanceHandler struct {
	svc *finance.Service
	log *logger.Logger
}

// NewFinanceHandler construye el handler.
func NewFinanceHandler(svc *finance.Service, log *logger.Logger) *FinanceHandler {
	return &FinanceHandler{svc: svc, log: log}
}

func financeFilter(c *fiber.Ctx) finance.ListFilter {
	return finance.ListFilter{
		Status:       c.Query("status"),
		MovementType: c.Query("movement_type"),
		SourceType:   c.Query("source_type"),
		From:         c.Query("date_from"),
		To:           c.Query("date_to"),
		Page:         c.Query("page"),
		PageSize:     c.Query("page_size"),
		Ordering:     c.Query("ordering"),
	}
}

// List godoc
// @Summary      Listar movimientos financieros
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        status         query  string  false  "OPEN | PAID | VOID"
// @Param        movement_type  query  string  false  "PAYABLE | RECEIVABLE"
// @Param        source_type    query  string  false  "PURCHASE | SALE"
// @Param        date_from      query  string  false  "YYYY-MM-DD"
// @Param        date_to        query  string  false  "YYYY-MM-DD"
// @Param        page           query  int     false  "default 1"
// @Param        page_size      query  int     false  "default 50"
// @Param        ordering       query  string  false  "created_at | paid_at | amount | id"
// @Success      200  {object}  dto.PageResponse[dto.FinancialMovementResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/finance/movements [get]
func (h *FinanceHandler) List(c *fiber.Ctx) error {
	page, err := h.svc.List(c.UserContext(), financeFilter(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPage(page, dto.FinancialMovementFromEntity))
}

// Get godoc
// @Summary      Obtener movimiento financiero
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.FinancialMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/finance/movements/{id} [get]
func (h *FinanceHandler) Get(c *fiber.Ctx) error {
	m, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FinancialMovementFromEntity(m))
}

// Pay godoc
// @Summary      Marcar movimiento como pagado
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.FinancialMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/finance/movements/{id}/pay [post]
func (h *FinanceHandler) Pay(c *fiber.Ctx) error {
	m, err := h.svc.Pay(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FinancialMovementFromEntity(m))
}

// Summary godoc
// @Summary      Resumen por tipo y estado
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        status         query  string  false  "OPEN | PAID | VOID"
// @Param        movement_type  query  string  false  "PAYABLE | RECEIVABLE"
// @Param        source_type    query  string  false  "PURCHASE | SALE"
// @Param        date_from      query  string  false  "YYYY-MM-DD"
// @Param        date_to        query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.SummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/finance/summary [get]
func (h *FinanceHandler) Summary(c *fiber.Ctx) error {
	r, err := h.svc.Summary(c.UserContext(), financeFilter(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SummaryFromReport(r))
}
