package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/catalog"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// CatalogHandler productos y proveedores.
type CatalogHandler struct {
	svc *catalog.Service
	log *logger.Logger
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(svc *catalog.Service, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

// CreateProduct godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "sku, name, purchase_cost, sale_price"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	p, err := h.svc.CreateProduct(c.UserContext(), catalog.CreateProductInput{
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		PurchaseCost: in.PurchaseCost,
		SalePrice:    in.SalePrice,
		Status:       in.Status,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProductFromEntity(p))
}

// UpdateProduct godoc
// @Summary      Actualizar producto (el stock no se edita aquí)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "UUID"
// @Param        body  body  dto.UpdateProductRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	p, err := h.svc.UpdateProduct(c.UserContext(), c.Params("id"), catalog.UpdateProductInput{
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		PurchaseCost: in.PurchaseCost,
		SalePrice:    in.SalePrice,
		Status:       in.Status,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ProductFromEntity(p))
}

// GetProduct godoc
// @Summary      Obtener producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.svc.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ProductFromEntity(p))
}

// ListProducts godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        search     query  string  false  "sku o nombre"
// @Param        status     query  string  false  "ACTIVE | INACTIVE"
// @Param        page       query  int     false  "default 1"
// @Param        page_size  query  int     false  "default 50"
// @Param        ordering   query  string  false  "sku | name | stock | created_at"
// @Success      200  {object}  dto.PageResponse[dto.ProductResponse]
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	page, err := h.svc.ListProducts(c.UserContext(), catalog.ProductListFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Page:     c.Query("page"),
		PageSize: c.Query("page_size"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPage(page, dto.ProductFromEntity))
}

// CreateSupplier godoc
// @Summary      Crear proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SupplierRequest  true  "name, tax_id, email"
// @Success      201   {object}  dto.SupplierResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/suppliers [post]
func (h *CatalogHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.SupplierRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	s, err := h.svc.CreateSupplier(c.UserContext(), catalog.SupplierInput{
		Name:    in.Name,
		TaxID:   in.TaxID,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SupplierFromEntity(s))
}

// UpdateSupplier godoc
// @Summary      Actualizar proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "UUID"
// @Param        body  body  dto.UpdateSupplierRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.SupplierResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id} [put]
func (h *CatalogHandler) UpdateSupplier(c *fiber.Ctx) error {
	var in dto.UpdateSupplierRequest
	if ok, err := bind(c, h.log, &in); !ok {
		return err
	}
	s, err := h.svc.UpdateSupplier(c.UserContext(), c.Params("id"), catalog.UpdateSupplierInput{
		Name:     in.Name,
		TaxID:    in.TaxID,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
		IsActive: in.IsActive,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SupplierFromEntity(s))
}

// GetSupplier godoc
// @Summary      Obtener proveedor
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "UUID"
// @Success      200  {object}  dto.SupplierResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id} [get]
func (h *CatalogHandler) GetSupplier(c *fiber.Ctx) error {
	s, err := h.svc.GetSupplier(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SupplierFromEntity(s))
}

// ListSuppliers godoc
// @Summary      Listar proveedores
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        active     query  string  false  "true | false"
// @Param        page       query  int     false  "default 1"
// @Param        page_size  query  int     false  "default 50"
// @Param        ordering   query  string  false  "name | created_at"
// @Success      200  {object}  dto.PageResponse[dto.SupplierResponse]
// @Router       /api/suppliers [get]
func (h *CatalogHandler) ListSuppliers(c *fiber.Ctx) error {
	page, err := h.svc.ListSuppliers(c.UserContext(), catalog.SupplierListFilter{
		ActiveOnly: c.Query("active"),
		Page:       c.Query("page"),
		PageSize:   c.Query("page_size"),
		Ordering:   c.Query("ordering"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPage(page, dto.SupplierFromEntity))
}
