package sales

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

// AddLineInput alta de línea. UnitPrice nil toma el sale_price del producto.
type AddLineInput struct {
	ProductID string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// UpdateLineInput edición parcial de una línea.
type UpdateLineInput struct {
	Quantity  *int
	UnitPrice *decimal.Decimal
}

// AddLine agrega una línea o, si el producto ya está en la orden, suma la cantidad
// y reemplaza el precio cuando viene informado. Sólo en DRAFT.
func (s *Service) AddLine(ctx context.Context, orderID string, in AddLineInput) (*entity.SalesOrder, error) {
	return s.editLines(ctx, orderID, "add_line", func(ctx context.Context, st repository.Store, so *entity.SalesOrder) error {
		product, err := st.Products().GetByID(ctx, in.ProductID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return domain.NotFound("producto", in.ProductID)
		}

		existing := so.FindLine(product.ID)
		unit := product.SalePrice
		quantity := in.Quantity
		if existing != nil {
			unit = existing.UnitPrice
		}
		if in.UnitPrice != nil {
			unit = *in.UnitPrice
		}
		if err := entity.ValidateDraftLine(in.Quantity, unit, "unit_price", product).Err("línea inválida", nil); err != nil {
			return err
		}
		if existing != nil {
			quantity += existing.Quantity
			if quantity > entity.MaxQuantity {
				return domain.Invalid("quantity", fmt.Sprintf("La cantidad acumulada del producto %s supera el máximo de %d.", product.SKU, entity.MaxQuantity))
			}
		}
		unit, err = money.Require("unit_price", unit)
		if err != nil {
			return err
		}

		if existing != nil {
			existing.Quantity = quantity
			existing.UnitPrice = unit
			if err := st.SalesOrders().UpdateLine(ctx, existing); err != nil {
				return fmt.Errorf("update sales order line: %w", err)
			}
			return nil
		}
		line := &entity.SalesOrderLine{
			ID:           uuid.New().String(),
			SalesOrderID: so.ID,
			ProductID:    product.ID,
			Quantity:     quantity,
			UnitPrice:    unit,
		}
		if err := st.SalesOrders().InsertLine(ctx, line); err != nil {
			return fmt.Errorf("insert sales order line: %w", err)
		}
		return nil
	})
}

// UpdateLine cambia cantidad y/o precio de una línea existente. Sólo en DRAFT.
func (s *Service) UpdateLine(ctx context.Context, orderID, lineID string, in UpdateLineInput) (*entity.SalesOrder, error) {
	return s.editLines(ctx, orderID, "update_line", func(ctx context.Context, st repository.Store, so *entity.SalesOrder) error {
		line := findLineByID(so, lineID)
		if line == nil {
			return domain.NotFound("línea de venta", lineID)
		}
		product, err := st.Products().GetByID(ctx, line.ProductID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if in.Quantity != nil {
			line.Quantity = *in.Quantity
		}
		if in.UnitPrice != nil {
			line.UnitPrice = *in.UnitPrice
		}
		if err := entity.ValidateDraftLine(line.Quantity, line.UnitPrice, "unit_price", product).Err("línea inválida", nil); err != nil {
			return err
		}
		if line.UnitPrice, err = money.Require("unit_price", line.UnitPrice); err != nil {
			return err
		}
		if err := st.SalesOrders().UpdateLine(ctx, line); err != nil {
			return fmt.Errorf("update sales order line: %w", err)
		}
		return nil
	})
}

// RemoveLine elimina una línea. Sólo en DRAFT.
func (s *Service) RemoveLine(ctx context.Context, orderID, lineID string) (*entity.SalesOrder, error) {
	return s.editLines(ctx, orderID, "remove_line", func(ctx context.Context, st repository.Store, so *entity.SalesOrder) error {
		if findLineByID(so, lineID) == nil {
			return domain.NotFound("línea de venta", lineID)
		}
		if err := st.SalesOrders().DeleteLine(ctx, so.ID, lineID); err != nil {
			return fmt.Errorf("delete sales order line: %w", err)
		}
		return nil
	})
}

// editLines bloquea la orden, exige DRAFT, aplica edit y devuelve la orden recargada.
func (s *Service) editLines(
	ctx context.Context,
	orderID, action string,
	edit func(ctx context.Context, st repository.Store, so *entity.SalesOrder) error,
) (*entity.SalesOrder, error) {
	var out *entity.SalesOrder
	err := s.tx.Run(ctx, repository.LockSet{SalesOrders: []string{orderID}}, func(ctx context.Context, st repository.Store) error {
		so, err := loadOrder(ctx, st, orderID)
		if err != nil {
			return err
		}
		if err := so.EnsureDraft(); err != nil {
			return err
		}
		if err := edit(ctx, st, so); err != nil {
			return err
		}
		so.UpdatedAt = s.now()
		if err := st.SalesOrders().Update(ctx, so); err != nil {
			return fmt.Errorf("update sales order: %w", err)
		}
		out, err = loadOrder(ctx, st, orderID)
		return err
	})
	if err != nil {
		s.fail(action, orderID, err)
		return nil, err
	}
	s.log.Debug().Str("sales_order_id", orderID).Str("action", action).Int("lines", len(out.Lines)).Msg("líneas de venta actualizadas")
	return out, nil
}

func findLineByID(so *entity.SalesOrder, lineID string) *entity.SalesOrderLine {
	for i := range so.Lines {
		if so.Lines[i].ID == lineID {
			return &so.Lines[i]
		}
	}
	return nil
}
