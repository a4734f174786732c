package apptest

import (
	"cmp"
	"context"
	"strings"
	"time"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

type productRepo struct{ s *store }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return integrity(domain.IntegrityUnique, "products_pkey")
		}
		for _, other := range st.products {
			if other.SKU == p.SKU {
				return integrity(domain.IntegrityUnique, "products_sku_key")
			}
		}
		if p.Stock < 0 {
			return integrity(domain.IntegrityCheck, "products_stock_non_negative")
		}
		if p.Stock > entity.MaxQuantity || priceOutOfRange(p.PurchaseCost) || priceOutOfRange(p.SalePrice) {
			return outOfRange("products")
		}
		st.products[p.ID] = cloneProduct(p)
		return nil
	})
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.s.do(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return notFoundRow("producto", p.ID)
		}
		for id, other := range st.products {
			if id != p.ID && other.SKU == p.SKU {
				return integrity(domain.IntegrityUnique, "products_sku_key")
			}
		}
		if priceOutOfRange(p.PurchaseCost) || priceOutOfRange(p.SalePrice) {
			return outOfRange("products")
		}
		next := cloneProduct(p)
		next.Stock = cur.Stock
		next.CreatedAt = cur.CreatedAt
		st.products[p.ID] = next
		return nil
	})
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = cloneProduct(p)
		}
		return nil
	})
	return out, err
}

func (r productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.do(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				out = cloneProduct(p)
			}
		}
		return nil
	})
	return out, err
}

func (r productRepo) GetMany(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	err := r.s.do(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = cloneProduct(p)
			}
		}
		return nil
	})
	return out, err
}

func (r productRepo) UpdateStock(_ context.Context, id string, stock int, at time.Time) error {
	if err := r.s.db.fault("products.update_stock"); err != nil {
		return err
	}
	return r.s.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return notFoundRow("producto", id)
		}
		if stock < 0 {
			return integrity(domain.IntegrityCheck, "products_stock_non_negative")
		}
		if stock > entity.MaxQuantity {
			return outOfRange("products.stock")
		}
		p.Stock = stock
		p.UpdatedAt = at
		return nil
	})
}

var productOrdering = map[string]comparator[entity.Product]{
	"sku":        func(a, b *entity.Product) int { return cmp.Compare(a.SKU, b.SKU) },
	"name":       func(a, b *entity.Product) int { return cmp.Compare(a.Name, b.Name) },
	"stock":      func(a, b *entity.Product) int { return cmp.Compare(a.Stock, b.Stock) },
	"created_at": func(a, b *entity.Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (r productRepo) List(_ context.Context, f repository.ProductFilter) (*repository.Page[entity.Product], error) {
	var items []*entity.Product
	search := strings.ToLower(strings.TrimSpace(f.Search))
	err := r.s.do(func(st *state) error {
		for _, p := range st.products {
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.SKU), search) && !strings.Contains(strings.ToLower(p.Name), search) {
				continue
			}
			items = append(items, cloneProduct(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortBy(items, f.Ordering, productOrdering, func(p *entity.Product) string { return p.ID })
	return paginate(items, f.Page, f.Ordering), nil
}

type supplierRepo struct{ s *store }

func (r supplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.suppliers[s.ID]; ok {
			return integrity(domain.IntegrityUnique, "suppliers_pkey")
		}
		c := *s
		st.suppliers[s.ID] = &c
		return nil
	})
}

func (r supplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	return r.s.do(func(st *state) error {
		cur, ok := st.suppliers[s.ID]
		if !ok {
			return notFoundRow("proveedor", s.ID)
		}
		c := *s
		c.CreatedAt = cur.CreatedAt
		st.suppliers[s.ID] = &c
		return nil
	})
}

func (r supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.s.do(func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			c := *s
			out = &c
		}
		return nil
	})
	return out, err
}

var supplierOrdering = map[string]comparator[entity.Supplier]{
	"name":       func(a, b *entity.Supplier) int { return cmp.Compare(a.Name, b.Name) },
	"created_at": func(a, b *entity.Supplier) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (r supplierRepo) List(_ context.Context, f repository.SupplierFilter) (*repository.Page[entity.Supplier], error) {
	var items []*entity.Supplier
	err := r.s.do(func(st *state) error {
		for _, s := range st.suppliers {
			if f.ActiveOnly && !s.IsActive {
				continue
			}
			c := *s
			items = append(items, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortBy(items, f.Ordering, supplierOrdering, func(s *entity.Supplier) string { return s.ID })
	return paginate(items, f.Page, f.Ordering), nil
}

type movementRepo struct{ s *store }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if err := r.s.db.fault("stock_movements.create"); err != nil {
		return err
	}
	return r.s.do(func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return integrity(domain.IntegrityForeignKey, "stock_movements_product_id_fkey")
		}
		if m.Quantity <= 0 {
			return integrity(domain.IntegrityCheck, "stock_movements_quantity_positive")
		}
		if m.Quantity > entity.MaxQuantity {
			return outOfRange("stock_movements.quantity")
		}
		if !m.Type.Valid() {
			return integrity(domain.IntegrityCheck, "stock_movements_type_valid")
		}
		c := *m
		st.movements = append(st.movements, &c)
		return nil
	})
}

func (r movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.s.do(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				c := *m
				out = &c
			}
		}
		return nil
	})
	return out, err
}

var movementOrdering = map[string]comparator[entity.StockMovement]{
	"created_at": func(a, b *entity.StockMovement) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"quantity":   func(a, b *entity.StockMovement) int { return cmp.Compare(a.Quantity, b.Quantity) },
}

func (r movementRepo) List(_ context.Context, f repository.StockMovementFilter) (*repository.Page[entity.StockMovement], error) {
	var items []*entity.StockMovement
	err := r.s.do(func(st *state) error {
		for _, m := range st.movements {
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if !f.Range.Contains(m.CreatedAt) {
				continue
			}
			c := *m
			items = append(items, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortBy(items, f.Ordering, movementOrdering, func(m *entity.StockMovement) string { return m.ID })
	return paginate(items, f.Page, f.Ordering), nil
}

func (r movementRepo) Totals(_ context.Context, productID string) (int, int, error) {
	var in, out int
	err := r.s.do(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID != productID {
				continue
			}
			if m.Type == entity.MovementIn {
				in += m.Quantity
			} else {
				out += m.Quantity
			}
		}
		return nil
	})
	return in, out, err
}
