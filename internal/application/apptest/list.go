package apptest

import (
	"cmp"
	"slices"
	"time"

	"github.com/jhoicas/erp-core/internal/domain/repository"
)

type comparator[T any] func(a, b *T) int

// sortBy ordena por o.Field (si está en keys) y desempata por id ascendente.
func sortBy[T any](items []*T, o repository.Ordering, keys map[string]comparator[T], id func(*T) string) {
	primary := keys[o.Field]
	slices.SortStableFunc(items, func(a, b *T) int {
		if primary != nil {
			c := primary(a, b)
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(id(a), id(b))
	})
}

func paginate[T any](items []*T, page repository.PageRequest, o repository.Ordering) *repository.Page[T] {
	if page.PageSize == 0 {
		page, _ = repository.NewPage(page.Page, 0)
	}
	total := len(items)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)
	return &repository.Page[T]{
		Items:    items[start:end],
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Ordering: o.String(),
	}
}

// compareTimePtr nil va al final en orden ascendente (como NULLS LAST de PostgreSQL).
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
