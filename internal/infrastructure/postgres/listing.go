package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// where acumula condiciones con placeholders numerados.
type where struct {
	conds []string
	args  []any
}

// add agrega cond; cada "?" se reemplaza por el $n de arg.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) timeRange(col string, r repository.TimeRange) {
	if r.From != nil {
		w.add(col+" >= ?", *r.From)
	}
	if r.To != nil {
		w.add(col+" <= ?", *r.To)
	}
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy arma ORDER BY sólo con columnas de la lista blanca; desempata por id.
func orderBy(o repository.Ordering, columns map[string]string) string {
	col, ok := columns[o.Field]
	if !ok {
		return " ORDER BY id"
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id", col, dir)
}

type rowScanner[T any] func(row pgx.Row) (*T, error)

// listPage COUNT(*) más la página pedida.
func listPage[T any](ctx context.Context, q Querier, op, columns, table string, w *where, o repository.Ordering, orderCols map[string]string, page repository.PageRequest, scan rowScanner[T]) (*repository.Page[T], error) {
	if page.PageSize == 0 {
		page, _ = repository.NewPage(page.Page, 0)
	}
	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+w.String(), w.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%s count: %w", op, err)
	}
	args := append([]any{}, w.args...)
	args = append(args, page.PageSize, page.Offset())
	query := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d",
		columns, table, w.String(), orderBy(o, orderCols), len(args)-1, len(args))
	items, err := queryAll(ctx, q, op, query, args, scan)
	if err != nil {
		return nil, err
	}
	return &repository.Page[T]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Ordering: o.String(),
	}, nil
}

func queryAll[T any](ctx context.Context, q Querier, op, query string, args []any, scan rowScanner[T]) ([]*T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	items := make([]*T, 0)
	for rows.Next() {
		it, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// nullable NULL para cadenas vacías (columnas de auditoría opcionales).
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
