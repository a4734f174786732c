package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id::text, sku, name, description, stock, purchase_cost, sale_price, status, is_active, created_at, updated_at`

var productOrderColumns = map[string]string{
	"sku":        "sku",
	"name":       "name",
	"stock":      "stock",
	"created_at": "created_at",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var status string
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Stock, &p.PurchaseCost, &p.SalePrice,
		&status, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = entity.ProductStatus(status)
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, stock, purchase_cost, sale_price, status, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.Stock, p.PurchaseCost, p.SalePrice,
		string(p.Status), p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	return translate("insert product", err)
}

// Update escribe campos de catálogo; nunca stock.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET sku = $2, name = $3, description = $4, purchase_cost = $5, sale_price = $6,
		    status = $7, is_active = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.PurchaseCost, p.SalePrice,
		string(p.Status), p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		return translate("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("producto", p.ID)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// GetMany productos encontrados indexados por id; los inexistentes no aparecen.
func (r *ProductRepo) GetMany(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	ids = validIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	items, err := queryAll(ctx, r.q, "get products",
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1::uuid[])`, []any{ids}, scanProduct)
	if err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

// UpdateStock escribe el contador materializado. La fila debe estar bloqueada por el llamador.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock int, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = $3 WHERE id = $1`, id, stock, at)
	if err != nil {
		return translate("update stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("producto", id)
	}
	return nil
}

// List filtra por estado y texto (sku o nombre) y pagina.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) (*repository.Page[entity.Product], error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		w.add("(sku ILIKE ? OR name ILIKE ?)", "%"+escapeLike(s)+"%")
	}
	return listPage(ctx, r.q, "list products", productColumns, "products", w, f.Ordering, productOrderColumns, f.Page, scanProduct)
}

// escapeLike escapa comodines de LIKE en texto del usuario.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
