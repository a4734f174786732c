package dto

import (
	"time"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/inventory/movements.
type RecordMovementRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	MovementType string `json:"movement_type" validate:"required,oneof=IN OUT in out"`
	Quantity     int    `json:"quantity" validate:"gt=0,lte=2147483647"`
	Note         string `json:"note" validate:"max=255"`
}

// StockMovementResponse movimiento del ledger de inventario.
type StockMovementResponse struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	MovementType string    `json:"movement_type"`
	Quantity     int       `json:"quantity"`
	Note         string    `json:"note"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func StockMovementFromEntity(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		MovementType: string(m.Type),
		Quantity:     m.Quantity,
		Note:         m.Note,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}

// StockAuditResponse stock materializado contra la suma del ledger.
type StockAuditResponse struct {
	ProductID  string `json:"product_id"`
	SKU        string `json:"sku"`
	Stock      int    `json:"stock"`
	TotalIn    int    `json:"total_in"`
	TotalOut   int    `json:"total_out"`
	Calculated int    `json:"calculated"`
	Drift      int    `json:"drift"`
	InSync     bool   `json:"in_sync"`
}

func StockAuditFromEntity(a *entity.StockAudit) StockAuditResponse {
	return StockAuditResponse{
		ProductID:  a.ProductID,
		SKU:        a.SKU,
		Stock:      a.Stock,
		TotalIn:    a.TotalIn,
		TotalOut:   a.TotalOut,
		Calculated: a.Calculated,
		Drift:      a.Drift,
		InSync:     a.InSync(),
	}
}
