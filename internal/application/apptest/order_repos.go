package apptest

import (
	"cmp"
	"context"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes de compra
// ──────────────────────────────────────────────────────────────────────────────

type purchaseRepo struct{ s *store }

func checkPurchaseRow(o *entity.PurchaseOrder) error {
	if !o.Status.Valid() {
		return integrity(domain.IntegrityCheck, "purchase_orders_status_valid")
	}
	confirmed := o.ConfirmedBy != "" && o.ConfirmedAt != nil
	received := o.ReceivedBy != "" && o.ReceivedAt != nil
	if (o.Status == entity.PurchaseReceived) != received {
		return integrity(domain.IntegrityCheck, "purchase_orders_received_coherent")
	}
	if (o.Status == entity.PurchaseConfirmed || o.Status == entity.PurchaseReceived) && !confirmed {
		return integrity(domain.IntegrityCheck, "purchase_orders_confirmed_coherent")
	}
	return nil
}

func (r purchaseRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.suppliers[o.SupplierID]; !ok {
			return integrity(domain.IntegrityForeignKey, "purchase_orders_supplier_id_fkey")
		}
		if err := checkPurchaseRow(o); err != nil {
			return err
		}
		st.pos[o.ID] = clonePO(o)
		return nil
	})
}

func (r purchaseRepo) Update(_ context.Context, o *entity.PurchaseOrder) error {
	if err := r.s.db.fault("purchase_orders.update"); err != nil {
		return err
	}
	return r.s.do(func(st *state) error {
		cur, ok := st.pos[o.ID]
		if !ok {
			return notFoundRow("orden de compra", o.ID)
		}
		if err := checkPurchaseRow(o); err != nil {
			return err
		}
		next := clonePO(o)
		next.CreatedAt = cur.CreatedAt
		next.CreatedBy = cur.CreatedBy
		st.pos[o.ID] = next
		return nil
	})
}

func (st *state) purchaseWithLines(id string) *entity.PurchaseOrder {
	o, ok := st.pos[id]
	if !ok {
		return nil
	}
	out := clonePO(o)
	for _, ln := range st.poLines {
		if ln.PurchaseOrderID == id {
			out.Lines = append(out.Lines, *ln)
		}
	}
	return out
}

func (r purchaseRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.s.do(func(st *state) error {
		out = st.purchaseWithLines(id)
		return nil
	})
	return out, err
}

var purchaseOrdering = map[string]comparator[entity.PurchaseOrder]{
	"created_at": func(a, b *entity.PurchaseOrder) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"status":     func(a, b *entity.PurchaseOrder) int { return cmp.Compare(a.Status, b.Status) },
	"id":         func(a, b *entity.PurchaseOrder) int { return cmp.Compare(a.ID, b.ID) },
}

func (r purchaseRepo) List(_ context.Context, f repository.OrderFilter) (*repository.Page[entity.PurchaseOrder], error) {
	var items []*entity.PurchaseOrder
	err := r.s.do(func(st *state) error {
		for id, o := range st.pos {
			if f.Status != "" && string(o.Status) != f.Status {
				continue
			}
			if !f.Range.Contains(o.CreatedAt) {
				continue
			}
			items = append(items, st.purchaseWithLines(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortBy(items, f.Ordering, purchaseOrdering, func(o *entity.PurchaseOrder) string { return o.ID })
	return paginate(items, f.Page, f.Ordering), nil
}

func (r purchaseRepo) InsertLine(_ context.Context, l *entity.PurchaseOrderLine) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.pos[l.PurchaseOrderID]; !ok {
			return integrity(domain.IntegrityForeignKey, "purchase_order_lines_purchase_order_id_fkey")
		}
		if _, ok := st.products[l.ProductID]; !ok {
			return integrity(domain.IntegrityForeignKey, "purchase_order_lines_product_id_fkey")
		}
		for _, ln := range st.poLines {
			if ln.PurchaseOrderID == l.PurchaseOrderID && ln.ProductID == l.ProductID {
				return integrity(domain.IntegrityUnique, "uniq_po_line_product")
			}
		}
		if l.Quantity <= 0 || l.UnitCost.IsNegative() {
			return integrity(domain.IntegrityCheck, "purchase_order_line_values")
		}
		if l.Quantity > entity.MaxQuantity || priceOutOfRange(l.UnitCost) {
			return outOfRange("purchase_order_lines")
		}
		c := *l
		st.poLines = append(st.poLines, &c)
		return nil
	})
}

func (r purchaseRepo) UpdateLine(_ context.Context, l *entity.PurchaseOrderLine) error {
	return r.s.do(func(st *state) error {
		if l.Quantity <= 0 || l.UnitCost.IsNegative() {
			return integrity(domain.IntegrityCheck, "purchase_order_line_values")
		}
		if l.Quantity > entity.MaxQuantity || priceOutOfRange(l.UnitCost) {
			return outOfRange("purchase_order_lines")
		}
		for i, ln := range st.poLines {
			if ln.ID == l.ID && ln.PurchaseOrderID == l.PurchaseOrderID {
				c := *l
				st.poLines[i] = &c
				return nil
			}
		}
		return notFoundRow("línea de compra", l.ID)
	})
}

func (r purchaseRepo) DeleteLine(_ context.Context, orderID, lineID string) error {
	return r.s.do(func(st *state) error {
		for i, ln := range st.poLines {
			if ln.ID == lineID && ln.PurchaseOrderID == orderID {
				st.poLines = append(st.poLines[:i], st.poLines[i+1:]...)
				return nil
			}
		}
		return notFoundRow("línea de compra", lineID)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes de venta
// ──────────────────────────────────────────────────────────────────────────────

type salesRepo struct{ s *store }

func (r salesRepo) Create(_ context.Context, o *entity.SalesOrder) error {
	return r.s.do(func(st *state) error {
		if !o.Status.Valid() {
			return integrity(domain.IntegrityCheck, "sales_orders_status_valid")
		}
		st.sos[o.ID] = cloneSO(o)
		return nil
	})
}

func (r salesRepo) Update(_ context.Context, o *entity.SalesOrder) error {
	if err := r.s.db.fault("sales_orders.update"); err != nil {
		return err
	}
	return r.s.do(func(st *state) error {
		cur, ok := st.sos[o.ID]
		if !ok {
			return notFoundRow("orden de venta", o.ID)
		}
		if !o.Status.Valid() {
			return integrity(domain.IntegrityCheck, "sales_orders_status_valid")
		}
		next := cloneSO(o)
		next.CreatedAt = cur.CreatedAt
		next.CreatedBy = cur.CreatedBy
		st.sos[o.ID] = next
		return nil
	})
}

func (st *state) salesWithLines(id string) *entity.SalesOrder {
	o, ok := st.sos[id]
	if !ok {
		return nil
	}
	out := cloneSO(o)
	for _, ln := range st.soLines {
		if ln.SalesOrderID == id {
			out.Lines = append(out.Lines, *ln)
		}
	}
	return out
}

func (r salesRepo) GetByID(_ context.Context, id string) (*entity.SalesOrder, error) {
	var out *entity.SalesOrder
	err := r.s.do(func(st *state) error {
		out = st.salesWithLines(id)
		return nil
	})
	return out, err
}

var salesOrdering = map[string]comparator[entity.SalesOrder]{
	"created_at": func(a, b *entity.SalesOrder) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"status":     func(a, b *entity.SalesOrder) int { return cmp.Compare(a.Status, b.Status) },
	"id":         func(a, b *entity.SalesOrder) int { return cmp.Compare(a.ID, b.ID) },
}

func (r salesRepo) List(_ context.Context, f repository.OrderFilter) (*repository.Page[entity.SalesOrder], error) {
	var items []*entity.SalesOrder
	err := r.s.do(func(st *state) error {
		for id, o := range st.sos {
			if f.Status != "" && string(o.Status) != f.Status {
				continue
			}
			if !f.Range.Contains(o.CreatedAt) {
				continue
			}
			items = append(items, st.salesWithLines(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortBy(items, f.Ordering, salesOrdering, func(o *entity.SalesOrder) string { return o.ID })
	return paginate(items, f.Page, f.Ordering), nil
}

func (r salesRepo) InsertLine(_ context.Context, l *entity.SalesOrderLine) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.sos[l.SalesOrderID]; !ok {
			return integrity(domain.IntegrityForeignKey, "sales_order_lines_sales_order_id_fkey")
		}
		if _, ok := st.products[l.ProductID]; !ok {
			return integrity(domain.IntegrityForeignKey, "sales_order_lines_product_id_fkey")
		}
		for _, ln := range st.soLines {
			if ln.SalesOrderID == l.SalesOrderID && ln.ProductID == l.ProductID {
				return integrity(domain.IntegrityUnique, "uniq_so_line_product")
			}
		}
		if l.Quantity <= 0 || l.UnitPrice.IsNegative() {
			return integrity(domain.IntegrityCheck, "sales_order_line_values")
		}
		if l.Quantity > entity.MaxQuantity || priceOutOfRange(l.UnitPrice) {
			return outOfRange("sales_order_lines")
		}
		c := *l
		st.soLines = append(st.soLines, &c)
		return nil
	})
}

func (r salesRepo) UpdateLine(_ context.Context, l *entity.SalesOrderLine) error {
	return r.s.do(func(st *state) error {
		if l.Quantity <= 0 || l.UnitPrice.IsNegative() {
			return integrity(domain.IntegrityCheck, "sales_order_line_values")
		}
		if l.Quantity > entity.MaxQuantity || priceOutOfRange(l.UnitPrice) {
			return outOfRange("sales_order_lines")
		}
		for i, ln := range st.soLines {
			if ln.ID == l.ID && ln.SalesOrderID == l.SalesOrderID {
				c := *l
				st.soLines[i] = &c
				return nil
			}
		}
		return notFoundRow("línea de venta", l.ID)
	})
}

func (r salesRepo) DeleteLine(_ context.Context, orderID, lineID string) error {
	return r.s.do(func(st *state) error {
		for i, ln := range st.soLines {
			if ln.ID == lineID && ln.SalesOrderID == orderID {
				st.soLines = append(st.soLines[:i], st.soLines[i+1:]...)
				return nil
			}
		}
		return notFoundRow("línea de venta", lineID)
	})
}
