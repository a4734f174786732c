package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/apptest"
	"github.com/jhoicas/erp-core/internal/application/catalog"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/pkg/logger"
)

func newService() (*catalog.Service, *apptest.DB) {
	db := apptest.New()
	return catalog.NewService(db, logger.Nop()).WithClock(apptest.Clock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))), db
}

func strPtr(s string) *string { return &s }

func TestCreateProduct(t *testing.T) {
	svc, db := newService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, catalog.CreateProductInput{
		SKU:          " A1 ",
		Name:         "Tornillo",
		PurchaseCost: decimal.RequireFromString("1.005"),
		SalePrice:    decimal.RequireFromString("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "A1", p.SKU)
	assert.Equal(t, 0, p.Stock)
	assert.True(t, p.Active())
	assert.Equal(t, "1.01", money.Format(p.PurchaseCost))
	assert.NotNil(t, db.Product(p.ID))

	_, err = svc.CreateProduct(ctx, catalog.CreateProductInput{SKU: "A1", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = svc.CreateProduct(ctx, catalog.CreateProductInput{SKU: "B1", Name: "Malo", SalePrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateProduct(ctx, catalog.CreateProductInput{SKU: "C1", Name: "X", Status: "ARCHIVED"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateProduct_NoTocaStock(t *testing.T) {
	svc, db := newService()
	ctx := context.Background()
	db.SeedProduct(apptest.Product("p1", "A1", 7, "1.00", "2.00"))
	db.SeedProduct(apptest.Product("p2", "B1", 0, "1.00", "2.00"))

	p, err := svc.UpdateProduct(ctx, "p1", catalog.UpdateProductInput{Name: strPtr("Tuerca"), Status: strPtr("inactive")})
	require.NoError(t, err)
	assert.Equal(t, "Tuerca", p.Name)
	assert.Equal(t, entity.ProductInactive, p.Status)
	assert.False(t, p.IsActive)
	assert.Equal(t, 7, db.Product("p1").Stock)

	_, err = svc.UpdateProduct(ctx, "p1", catalog.UpdateProductInput{SKU: strPtr("B1")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = svc.UpdateProduct(ctx, "nope", catalog.UpdateProductInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProducts(t *testing.T) {
	svc, db := newService()
	db.SeedProduct(apptest.Product("p1", "B1", 7, "1.00", "2.00"))
	db.SeedProduct(apptest.Product("p2", "A1", 3, "1.00", "2.00"))

	page, err := svc.ListProducts(context.Background(), catalog.ProductListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "A1", page.Items[0].SKU)

	page, err = svc.ListProducts(context.Background(), catalog.ProductListFilter{Ordering: "-stock"})
	require.NoError(t, err)
	assert.Equal(t, "B1", page.Items[0].SKU)

	_, err = svc.ListProducts(context.Background(), catalog.ProductListFilter{Ordering: "sale_price"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSuppliers(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	sup, err := svc.CreateSupplier(ctx, catalog.SupplierInput{Name: "Distribuidora Sur", TaxID: "900-1"})
	require.NoError(t, err)
	assert.True(t, sup.IsActive)

	_, err = svc.CreateSupplier(ctx, catalog.SupplierInput{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	off := false
	sup, err = svc.UpdateSupplier(ctx, sup.ID, catalog.UpdateSupplierInput{IsActive: &off, Phone: strPtr("555")})
	require.NoError(t, err)
	assert.False(t, sup.IsActive)
	assert.Equal(t, "555", sup.Phone)

	page, err := svc.ListSuppliers(ctx, catalog.SupplierListFilter{ActiveOnly: "true"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	_, err = svc.ListSuppliers(ctx, catalog.SupplierListFilter{ActiveOnly: "quizás"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.GetSupplier(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
