package purchasing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// AddLineInput alta de línea. UnitCost nil toma el purchase_cost del producto.
type AddLineInput struct {
	ProductID string
	Quantity  int
	UnitCost  *decimal.Decimal
}

// UpdateLineInput edición parcial de una línea.
type UpdateLineInput struct {
	Quantity *int
	UnitCost *decimal.Decimal
}

// AddLine agrega una línea o, si el producto ya está en la orden, suma la cantidad
// y reemplaza el costo cuando viene informado. Sólo en DRAFT.
func (s *Service) AddLine(ctx context.Context, orderID string, in AddLineInput) (*entity.PurchaseOrder, error) {
	return s.editLines(ctx, orderID, "add_line", func(ctx context.Context, st repository.Store, po *entity.PurchaseOrder) error {
		product, err := st.Products().GetByID(ctx, in.ProductID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return domain.NotFound("producto", in.ProductID)
		}

		existing := po.FindLine(product.ID)
		unit := product.PurchaseCost
		quantity := in.Quantity
		if existing != nil {
			unit = existing.UnitCost
		}
		if in.UnitCost != nil {
			unit = *in.UnitCost
		}
		if err := entity.ValidateDraftLine(in.Quantity, unit, "unit_cost", product).Err("línea inválida", nil); err != nil {
			return err
		}
		if existing != nil {
			quantity += existing.Quantity
			if quantity > entity.MaxQuantity {
				return domain.Invalid("quantity", fmt.Sprintf("La cantidad acumulada del producto %s supera el máximo de %d.", product.SKU, entity.MaxQuantity))
			}
		}
		unit, err = money.Require("unit_cost", unit)
		if err != nil {
			return err
		}

		if existing != nil {
			existing.Quantity = quantity
			existing.UnitCost = unit
			if err := st.PurchaseOrders().UpdateLine(ctx, existing); err != nil {
				return fmt.Errorf("update purchase order line: %w", err)
			}
			return nil
		}
		line := &entity.PurchaseOrderLine{
			ID:              uuid.New().String(),
			PurchaseOrderID: po.ID,
			ProductID:       product.ID,
			Quantity:        quantity,
			UnitCost:        unit,
		}
		if err := st.PurchaseOrders().InsertLine(ctx, line); err != nil {
			return fmt.Errorf("insert purchase order line: %w", err)
		}
		return nil
	})
}

// UpdateLine cambia cantidad y/o costo de una línea existente. Sólo en DRAFT.
func (s *Service) UpdateLine(ctx context.Context, orderID, lineID string, in UpdateLineInput) (*entity.PurchaseOrder, error) {
	return s.editLines(ctx, orderID, "update_line", func(ctx context.Context, st repository.Store, po *entity.PurchaseOrder) error {
		line := findLineByID(po, lineID)
		if line == nil {
			return domain.NotFound("línea de compra", lineID)
		}
		product, err := st.Products().GetByID(ctx, line.ProductID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if in.Quantity != nil {
			line.Quantity = *in.Quantity
		}
		if in.UnitCost != nil {
			line.UnitCost = *in.UnitCost
		}
		if err := entity.ValidateDraftLine(line.Quantity, line.UnitCost, "unit_cost", product).Err("línea inválida", nil); err != nil {
			return err
		}
		if line.UnitCost, err = money.Require("unit_cost", line.UnitCost); err != nil {
			return err
		}
		if err := st.PurchaseOrders().UpdateLine(ctx, line); err != nil {
			return fmt.Errorf("update purchase order line: %w", err)
		}
		return nil
	})
}

// RemoveLine elimina una línea. Sólo en DRAFT.
func (s *Service) RemoveLine(ctx context.Context, orderID, lineID string) (*entity.PurchaseOrder, error) {
	return s.editLines(ctx, orderID, "remove_line", func(ctx context.Context, st repository.Store, po *entity.PurchaseOrder) error {
		if findLineByID(po, lineID) == nil {
			return domain.NotFound("línea de compra", lineID)
		}
		if err := st.PurchaseOrders().DeleteLine(ctx, po.ID, lineID); err != nil {
			return fmt.Errorf("delete purchase order line: %w", err)
		}
		return nil
	})
}

// editLines bloquea la orden, exige DRAFT, aplica edit y devuelve la orden recargada.
func (s *Service) editLines(
	ctx context.Context,
	orderID, action string,
	edit func(ctx context.Context, st repository.Store, po *entity.PurchaseOrder) error,
) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := s.tx.Run(ctx, repository.LockSet{PurchaseOrders: []string{orderID}}, func(ctx context.Context, st repository.Store) error {
		po, err := loadOrder(ctx, st, orderID)
		if err != nil {
			return err
		}
		if err := po.EnsureDraft(); err != nil {
			return err
		}
		if err := edit(ctx, st, po); err != nil {
			return err
		}
		po.UpdatedAt = s.now()
		if err := st.PurchaseOrders().Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		out, err = loadOrder(ctx, st, orderID)
		return err
	})
	if err != nil {
		s.fail(action, orderID, err)
		return nil, err
	}
	s.log.Debug().Str("purchase_order_id", orderID).Str("action", action).Int("lines", len(out.Lines)).Msg("líneas actualizadas")
	return out, nil
}

func findLineByID(po *entity.PurchaseOrder, lineID string) *entity.PurchaseOrderLine {
	for i := range po.Lines {
		if po.Lines[i].ID == lineID {
			return &po.Lines[i]
		}
	}
	return nil
}
