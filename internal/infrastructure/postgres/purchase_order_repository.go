package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseColumns = `id::text, supplier_id::text, supplier_invoice, note, status, created_by, created_at, updated_at,
	confirmed_by, confirmed_at, received_by, received_at, cancelled_by, cancelled_at`

var orderOrderColumns = map[string]string{
	"created_at": "created_at",
	"status":     "status",
	"id":         "id",
}

// PurchaseOrderRepo órdenes de compra y sus líneas.
type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	var status string
	var confirmedBy, receivedBy, cancelledBy *string
	err := row.Scan(&o.ID, &o.SupplierID, &o.SupplierInvoice, &o.Note, &status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
		&confirmedBy, &o.ConfirmedAt, &receivedBy, &o.ReceivedAt, &cancelledBy, &o.CancelledAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.PurchaseStatus(status)
	o.ConfirmedBy, o.ReceivedBy, o.CancelledBy = deref(confirmedBy), deref(receivedBy), deref(cancelledBy)
	return &o, nil
}

func scanPurchaseLine(row pgx.Row) (*entity.PurchaseOrderLine, error) {
	var l entity.PurchaseOrderLine
	if err := row.Scan(&l.ID, &l.PurchaseOrderID, &l.ProductID, &l.Quantity, &l.UnitCost); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, supplier_id, supplier_invoice, note, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, o.ID, o.SupplierID, o.SupplierInvoice, o.Note, string(o.Status), o.CreatedBy, o.CreatedAt, o.UpdatedAt)
	return translate("insert purchase order", err)
}

// Update escribe cabecera, estado y auditoría; created_* no cambian.
func (r *PurchaseOrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET supplier_invoice = $2, note = $3, status = $4, updated_at = $5,
		    confirmed_by = $6, confirmed_at = $7, received_by = $8, received_at = $9,
		    cancelled_by = $10, cancelled_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, o.ID, o.SupplierInvoice, o.Note, string(o.Status), o.UpdatedAt,
		nullable(o.ConfirmedBy), o.ConfirmedAt, nullable(o.ReceivedBy), o.ReceivedAt,
		nullable(o.CancelledBy), o.CancelledAt)
	if err != nil {
		return translate("update purchase order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("orden de compra", o.ID)
	}
	return nil
}

// GetByID carga la orden con sus líneas en orden de alta. (nil, nil) si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanPurchaseOrder(r.q.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchase_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if err := r.attachLines(ctx, []*entity.PurchaseOrder{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.OrderFilter) (*repository.Page[entity.PurchaseOrder], error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	w.timeRange("created_at", f.Range)
	page, err := listPage(ctx, r.q, "list purchase orders", purchaseColumns, "purchase_orders", w, f.Ordering, orderOrderColumns, f.Page, scanPurchaseOrder)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *PurchaseOrderRepo) attachLines(ctx context.Context, orders []*entity.PurchaseOrder) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*entity.PurchaseOrder, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}
	lines, err := queryAll(ctx, r.q, "get purchase order lines", `
		SELECT id::text, purchase_order_id::text, product_id::text, quantity, unit_cost
		FROM purchase_order_lines WHERE purchase_order_id = ANY($1::uuid[]) ORDER BY seq`, []any{ids}, scanPurchaseLine)
	if err != nil {
		return err
	}
	for _, l := range lines {
		o := byID[l.PurchaseOrderID]
		o.Lines = append(o.Lines, *l)
	}
	return nil
}

func (r *PurchaseOrderRepo) InsertLine(ctx context.Context, l *entity.PurchaseOrderLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_order_lines (id, purchase_order_id, product_id, quantity, unit_cost)
		VALUES ($1, $2, $3, $4, $5)`, l.ID, l.PurchaseOrderID, l.ProductID, l.Quantity, l.UnitCost)
	return translate("insert purchase order line", err)
}

func (r *PurchaseOrderRepo) UpdateLine(ctx context.Context, l *entity.PurchaseOrderLine) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_order_lines SET quantity = $3, unit_cost = $4
		WHERE id = $1 AND purchase_order_id = $2`, l.ID, l.PurchaseOrderID, l.Quantity, l.UnitCost)
	if err != nil {
		return translate("update purchase order line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("línea de compra", l.ID)
	}
	return nil
}

func (r *PurchaseOrderRepo) DeleteLine(ctx context.Context, orderID, lineID string) error {
	if !validID(lineID) {
		return domain.NotFound("línea de compra", lineID)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM purchase_order_lines WHERE id = $1 AND purchase_order_id = $2`, lineID, orderID)
	if err != nil {
		return translate("delete purchase order line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("línea de compra", lineID)
	}
	return nil
}
