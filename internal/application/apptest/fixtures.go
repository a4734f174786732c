package apptest

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// Clock reloj fijo que avanza un segundo por llamada.
func Clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// Product producto activo con stock y precios dados ("12.50").
func Product(id, sku string, stock int, cost, price string) *entity.Product {
	p := &entity.Product{
		ID:           id,
		SKU:          sku,
		Name:         "Producto " + sku,
		Stock:        stock,
		PurchaseCost: decimal.RequireFromString(cost),
		SalePrice:    decimal.RequireFromString(price),
	}
	p.SetStatus(entity.ProductActive)
	return p
}

// Supplier proveedor activo.
func Supplier(id, name string) *entity.Supplier {
	return &entity.Supplier{ID: id, Name: name, IsActive: true}
}

// Recorder TransitionRecorder que guarda los eventos como "entity:action[:reason]".
type Recorder struct {
	mu     sync.Mutex
	Events []string
}

func (r *Recorder) Transition(entityName, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, fmt.Sprintf("%s:%s", entityName, action))
}

func (r *Recorder) Rejected(entityName, action, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, fmt.Sprintf("%s:%s:%s", entityName, action, reason))
}

// Snapshot copia de los eventos.
func (r *Recorder) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Events...)
}
