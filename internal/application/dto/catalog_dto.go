package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

// CreateProductRequest body para POST /api/products. El stock no se recibe: arranca en 0.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required,max=64"`
	Name         string          `json:"name" validate:"required,max=255"`
	Description  string          `json:"description"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	Status       string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE active inactive"`
}

// UpdateProductRequest body para PUT /api/products/:id (parcial).
type UpdateProductRequest struct {
	SKU          *string          `json:"sku" validate:"omitempty,max=64"`
	Name         *string          `json:"name" validate:"omitempty,max=255"`
	Description  *string          `json:"description"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	Status       *string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE active inactive"`
}

type ProductResponse struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Stock        int       `json:"stock"`
	PurchaseCost string    `json:"purchase_cost"`
	SalePrice    string    `json:"sale_price"`
	Status       string    `json:"status"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ProductFromEntity(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Stock:        p.Stock,
		PurchaseCost: money.Format(p.PurchaseCost),
		SalePrice:    money.Format(p.SalePrice),
		Status:       string(p.Status),
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// SupplierRequest body para POST /api/suppliers.
type SupplierRequest struct {
	Name    string `json:"name" validate:"required,max=180"`
	TaxID   string `json:"tax_id" validate:"max=50"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address"`
}

// UpdateSupplierRequest body para PUT /api/suppliers/:id (parcial).
type UpdateSupplierRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=180"`
	TaxID    *string `json:"tax_id" validate:"omitempty,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
}

type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func SupplierFromEntity(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		TaxID:     s.TaxID,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
