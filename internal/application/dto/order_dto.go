package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID      string `json:"supplier_id" validate:"required"`
	SupplierInvoice string `json:"supplier_invoice" validate:"max=80"`
	Note            string `json:"note"`
}

// AddPurchaseLineRequest si unit_cost falta se toma el purchase_cost del producto.
type AddPurchaseLineRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gt=0,lte=2147483647"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
}

type UpdatePurchaseLineRequest struct {
	Quantity *int             `json:"quantity" validate:"omitempty,gt=0,lte=2147483647"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
}

type PurchaseOrderLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitCost  string `json:"unit_cost"`
	LineTotal string `json:"line_total"`
}

type PurchaseOrderResponse struct {
	ID              string                      `json:"id"`
	SupplierID      string                      `json:"supplier_id"`
	SupplierInvoice string                      `json:"supplier_invoice"`
	Note            string                      `json:"note"`
	Status          string                      `json:"status"`
	Total           string                      `json:"total"`
	CreatedBy       string                      `json:"created_by"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	ConfirmedBy     string                      `json:"confirmed_by,omitempty"`
	ConfirmedAt     *time.Time                  `json:"confirmed_at,omitempty"`
	ReceivedBy      string                      `json:"received_by,omitempty"`
	ReceivedAt      *time.Time                  `json:"received_at,omitempty"`
	CancelledBy     string                      `json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time                  `json:"cancelled_at,omitempty"`
	Lines           []PurchaseOrderLineResponse `json:"lines"`
}

func PurchaseOrderFromEntity(o *entity.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, PurchaseOrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  money.Format(l.UnitCost),
			LineTotal: money.Format(l.LineTotal()),
		})
	}
	return PurchaseOrderResponse{
		ID:              o.ID,
		SupplierID:      o.SupplierID,
		SupplierInvoice: o.SupplierInvoice,
		Note:            o.Note,
		Status:          string(o.Status),
		Total:           money.Format(o.Total()),
		CreatedBy:       o.CreatedBy,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ConfirmedBy:     o.ConfirmedBy,
		ConfirmedAt:     o.ConfirmedAt,
		ReceivedBy:      o.ReceivedBy,
		ReceivedAt:      o.ReceivedAt,
		CancelledBy:     o.CancelledBy,
		CancelledAt:     o.CancelledAt,
		Lines:           lines,
	}
}

// CreateSalesOrderRequest body para POST /api/sales-orders.
type CreateSalesOrderRequest struct {
	CustomerName string `json:"customer_name" validate:"required,max=255"`
	CustomerDoc  string `json:"customer_doc" validate:"max=50"`
	Note         string `json:"note"`
}

// AddSalesLineRequest si unit_price falta se toma el sale_price del producto.
type AddSalesLineRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gt=0,lte=2147483647"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type UpdateSalesLineRequest struct {
	Quantity  *int             `json:"quantity" validate:"omitempty,gt=0,lte=2147483647"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CancelSalesOrderRequest reason se trunca a 255 caracteres.
type CancelSalesOrderRequest struct {
	Reason string `json:"reason"`
}

type SalesOrderLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type SalesOrderResponse struct {
	ID           string                   `json:"id"`
	CustomerName string                   `json:"customer_name"`
	CustomerDoc  string                   `json:"customer_doc"`
	Note         string                   `json:"note"`
	Status       string                   `json:"status"`
	Total        string                   `json:"total"`
	CreatedBy    string                   `json:"created_by"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
	ConfirmedBy  string                   `json:"confirmed_by,omitempty"`
	ConfirmedAt  *time.Time               `json:"confirmed_at,omitempty"`
	CancelledBy  string                   `json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time               `json:"cancelled_at,omitempty"`
	CancelReason string                   `json:"cancel_reason,omitempty"`
	Lines        []SalesOrderLineResponse `json:"lines"`
}

func SalesOrderFromEntity(o *entity.SalesOrder) SalesOrderResponse {
	lines := make([]SalesOrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, SalesOrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: money.Format(l.UnitPrice),
			LineTotal: money.Format(l.LineTotal()),
		})
	}
	return SalesOrderResponse{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		CustomerDoc:  o.CustomerDoc,
		Note:         o.Note,
		Status:       string(o.Status),
		Total:        money.Format(o.Total()),
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		ConfirmedBy:  o.ConfirmedBy,
		ConfirmedAt:  o.ConfirmedAt,
		CancelledBy:  o.CancelledBy,
		CancelledAt:  o.CancelledAt,
		CancelReason: o.CancelReason,
		Lines:        lines,
	}
}
