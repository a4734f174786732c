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

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

const salesColumns = `id::text, customer_name, customer_doc, note, status, created_by, created_at, updated_at,
	confirmed_by, confirmed_at, cancelled_by, cancelled_at, cancel_reason`

// SalesOrderRepo órdenes de venta y sus líneas.
type SalesOrderRepo struct {
	q Querier
}

func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

func scanSalesOrder(row pgx.Row) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	var status string
	var confirmedBy, cancelledBy *string
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerDoc, &o.Note, &status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
		&confirmedBy, &o.ConfirmedAt, &cancelledBy, &o.CancelledAt, &o.CancelReason)
	if err != nil {
		return nil, err
	}
	o.Status = entity.SalesStatus(status)
	o.ConfirmedBy, o.CancelledBy = deref(confirmedBy), deref(cancelledBy)
	return &o, nil
}

func scanSalesLine(row pgx.Row) (*entity.SalesOrderLine, error) {
	var l entity.SalesOrderLine
	if err := row.Scan(&l.ID, &l.SalesOrderID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	query := `
		INSERT INTO sales_orders (id, customer_name, customer_doc, note, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, o.ID, o.CustomerName, o.CustomerDoc, o.Note, string(o.Status), o.CreatedBy, o.CreatedAt, o.UpdatedAt)
	return translate("insert sales order", err)
}

func (r *SalesOrderRepo) Update(ctx context.Context, o *entity.SalesOrder) error {
	query := `
		UPDATE sales_orders
		SET customer_name = $2, customer_doc = $3, note = $4, status = $5, updated_at = $6,
		    confirmed_by = $7, confirmed_at = $8, cancelled_by = $9, cancelled_at = $10, cancel_reason = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, o.ID, o.CustomerName, o.CustomerDoc, o.Note, string(o.Status), o.UpdatedAt,
		nullable(o.ConfirmedBy), o.ConfirmedAt, nullable(o.CancelledBy), o.CancelledAt, o.CancelReason)
	if err != nil {
		return translate("update sales order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("orden de venta", o.ID)
	}
	return nil
}

func (r *SalesOrderRepo) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanSalesOrder(r.q.QueryRow(ctx, `SELECT `+salesColumns+` FROM sales_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	if err := r.attachLines(ctx, []*entity.SalesOrder{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *SalesOrderRepo) List(ctx context.Context, f repository.OrderFilter) (*repository.Page[entity.SalesOrder], error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	w.timeRange("created_at", f.Range)
	page, err := listPage(ctx, r.q, "list sales orders", salesColumns, "sales_orders", w, f.Ordering, orderOrderColumns, f.Page, scanSalesOrder)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *SalesOrderRepo) attachLines(ctx context.Context, orders []*entity.SalesOrder) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*entity.SalesOrder, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}
	lines, err := queryAll(ctx, r.q, "get sales order lines", `
		SELECT id::text, sales_order_id::text, product_id::text, quantity, unit_price
		FROM sales_order_lines WHERE sales_order_id = ANY($1::uuid[]) ORDER BY seq`, []any{ids}, scanSalesLine)
	if err != nil {
		return err
	}
	for _, l := range lines {
		o := byID[l.SalesOrderID]
		o.Lines = append(o.Lines, *l)
	}
	return nil
}

func (r *SalesOrderRepo) InsertLine(ctx context.Context, l *entity.SalesOrderLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales_order_lines (id, sales_order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`, l.ID, l.SalesOrderID, l.ProductID, l.Quantity, l.UnitPrice)
	return translate("insert sales order line", err)
}

func (r *SalesOrderRepo) UpdateLine(ctx context.Context, l *entity.SalesOrderLine) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales_order_lines SET quantity = $3, unit_price = $4
		WHERE id = $1 AND sales_order_id = $2`, l.ID, l.SalesOrderID, l.Quantity, l.UnitPrice)
	if err != nil {
		return translate("update sales order line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("línea de venta", l.ID)
	}
	return nil
}

func (r *SalesOrderRepo) DeleteLine(ctx context.Context, orderID, lineID string) error {
	if !validID(lineID) {
		return domain.NotFound("línea de venta", lineID)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM sales_order_lines WHERE id = $1 AND sales_order_id = $2`, lineID, orderID)
	if err != nil {
		return translate("delete sales order line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("línea de venta", lineID)
	}
	return nil
}
