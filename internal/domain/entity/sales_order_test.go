package entity_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
)

func soLine(productID string, qty int, price string) entity.SalesOrderLine {
	return entity.SalesOrderLine{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestSalesOrder_CheckConfirmStockInsuficiente(t *testing.T) {
	products := map[string]*entity.Product{"p1": activeProduct("p1", "A1", 3)}
	so := &entity.SalesOrder{ID: "so-1", CustomerName: "Cliente", Status: entity.SalesDraft, Lines: []entity.SalesOrderLine{soLine("p1", 5, "4.00")}}

	err := so.CheckConfirm("vera", products)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "A1", ise.SKU)
	assert.Equal(t, 3, ise.Available)
	assert.Equal(t, 5, ise.Required)
	assert.Equal(t, entity.SalesDraft, so.Status)
}

func TestSalesOrder_CheckConfirmValidaLineasAntesQueStock(t *testing.T) {
	products := map[string]*entity.Product{"p1": activeProduct("p1", "A1", 0)}
	so := &entity.SalesOrder{Status: entity.SalesDraft, Lines: []entity.SalesOrderLine{soLine("p1", 5, "0.00")}}

	err := so.CheckConfirm("vera", products)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestSalesOrder_ConfirmYCancelar(t *testing.T) {
	products := map[string]*entity.Product{"p1": activeProduct("p1", "A1", 10)}
	so := &entity.SalesOrder{ID: "so-1", CustomerName: "Cliente", Status: entity.SalesDraft, Lines: []entity.SalesOrderLine{soLine("p1", 4, "2.50")}}

	require.NoError(t, so.CheckConfirm("vera", products))
	so.MarkConfirmed("vera", now)
	assert.Equal(t, entity.SalesConfirmed, so.Status)
	assert.Equal(t, "10.00", so.Total().StringFixed(2))

	_, err := so.Cancel("", "sin actor", now)
	require.ErrorIs(t, err, domain.ErrInvalidInput, "cancelar CONFIRMED exige actor")
	assert.Equal(t, entity.SalesConfirmed, so.Status)

	wasConfirmed, err := so.Cancel("vera", strings.Repeat("x", 300), now)
	require.NoError(t, err)
	assert.True(t, wasConfirmed)
	assert.Equal(t, entity.SalesCancelled, so.Status)
	assert.Len(t, so.CancelReason, entity.MaxReasonLength)
	assert.Empty(t, entity.ValidateSalesOrder(so, &entity.SalesOrder{Status: entity.SalesConfirmed}))

	_, err = so.Cancel("vera", "", now)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSalesOrder_CancelarDraftSinActor(t *testing.T) {
	so := &entity.SalesOrder{CustomerName: "Cliente", Status: entity.SalesDraft}

	wasConfirmed, err := so.Cancel("", "cliente desistió", now)
	require.NoError(t, err)
	assert.False(t, wasConfirmed)
	assert.Equal(t, "cliente desistió", so.CancelReason)
}

func TestSalesOrder_ConfirmarNoDraft(t *testing.T) {
	so := &entity.SalesOrder{Status: entity.SalesConfirmed}
	err := so.CheckConfirm("u", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, so.EnsureDraft(), domain.ErrInvalidTransition)
}

func TestSalesOrder_StockSeAgregaPorProducto(t *testing.T) {
	products := map[string]*entity.Product{"p1": activeProduct("p1", "A1", 5)}
	so := &entity.SalesOrder{Status: entity.SalesDraft, Lines: []entity.SalesOrderLine{soLine("p1", 3, "1.00"), soLine("p1", 3, "1.00")}}

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, so.CheckConfirm("u", products), &ise)
	assert.Equal(t, 6, ise.Required)
}

func TestValidateSalesOrder(t *testing.T) {
	fe := entity.ValidateSalesOrder(&entity.SalesOrder{Status: entity.SalesDraft}, nil)
	require.NotEmpty(t, fe)
	assert.Equal(t, "customer_name", fe[0].Field)

	fe = entity.ValidateSalesOrder(&entity.SalesOrder{CustomerName: "c", Status: entity.SalesConfirmed}, nil)
	assert.Len(t, fe, 2)

	fe = entity.ValidateSalesOrder(
		&entity.SalesOrder{CustomerName: "c", Status: entity.SalesDraft},
		&entity.SalesOrder{Status: entity.SalesCancelled},
	)
	require.Len(t, fe, 1)
	assert.Equal(t, "status", fe[0].Field)
}
