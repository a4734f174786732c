package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-core/internal/domain/repository"
)

func TestLockSet_Canonical(t *testing.T) {
	l := repository.LockSet{
		Products:    []string{"p3", "p1", "", "p3", "p2"},
		SalesOrders: []string{"so-9"},
	}
	c := l.Canonical()
	assert.Equal(t, []string{"p1", "p2", "p3"}, c.Products)
	assert.Equal(t, []string{"so-9"}, c.SalesOrders)
	assert.Nil(t, c.PurchaseOrders)
	assert.Equal(t, []string{"p3", "p1", "", "p3", "p2"}, l.Products, "no modifica el original")
}

func TestLockSet_KeysOrdenGlobal(t *testing.T) {
	l := repository.LockSet{
		FinancialMovements: []string{"fm-1"},
		Products:           []string{"b", "a"},
		SalesOrders:        []string{"so-1"},
		PurchaseOrders:     []string{"po-2", "po-1"},
	}
	want := []repository.LockKey{
		{Kind: repository.LockPurchaseOrder, ID: "po-1"},
		{Kind: repository.LockPurchaseOrder, ID: "po-2"},
		{Kind: repository.LockSalesOrder, ID: "so-1"},
		{Kind: repository.LockProduct, ID: "a"},
		{Kind: repository.LockProduct, ID: "b"},
		{Kind: repository.LockFinancialMovement, ID: "fm-1"},
	}
	assert.Equal(t, want, l.Keys())
}

func TestLockSet_Empty(t *testing.T) {
	assert.True(t, repository.LockSet{}.Empty())
	assert.True(t, repository.LockSet{Products: []string{}}.Empty())
	assert.False(t, repository.LockSet{Products: []string{"p"}}.Empty())
}
