package repository

import "sort"

// LockKind tipo de fila bloqueable. El orden de las constantes es el orden global de adquisición.
type LockKind int

const (
	LockPurchaseOrder LockKind = iota
	LockSalesOrder
	LockProduct
	LockFinancialMovement
)

func (k LockKind) String() string {
	switch k {
	case LockPurchaseOrder:
		return "purchase_order"
	case LockSalesOrder:
		return "sales_order"
	case LockProduct:
		return "product"
	case LockFinancialMovement:
		return "financial_movement"
	}
	return "unknown"
}

// LockKey una fila concreta.
type LockKey struct {
	Kind LockKind
	ID   string
}

// LockSet filas a bloquear (SELECT ... FOR UPDATE) al abrir una unidad de trabajo.
// Todos los llamadores adquieren en el mismo orden: órdenes de compra, órdenes de venta,
// productos, movimientos financieros; dentro de cada tipo por id ascendente.
type LockSet struct {
	PurchaseOrders     []string
	SalesOrders        []string
	Products           []string
	FinancialMovements []string
}

// Empty true si no hay nada que bloquear.
func (l LockSet) Empty() bool {
	return len(l.PurchaseOrders) == 0 && len(l.SalesOrders) == 0 && len(l.Products) == 0 && len(l.FinancialMovements) == 0
}

// Canonical copia ordenada y sin duplicados ni ids vacíos.
func (l LockSet) Canonical() LockSet {
	return LockSet{
		PurchaseOrders:     sortedUnique(l.PurchaseOrders),
		SalesOrders:        sortedUnique(l.SalesOrders),
		Products:           sortedUnique(l.Products),
		FinancialMovements: sortedUnique(l.FinancialMovements),
	}
}

// Keys secuencia canónica de adquisición.
func (l LockSet) Keys() []LockKey {
	c := l.Canonical()
	keys := make([]LockKey, 0, len(c.PurchaseOrders)+len(c.SalesOrders)+len(c.Products)+len(c.FinancialMovements))
	for _, group := range []struct {
		kind LockKind
		ids  []string
	}{
		{LockPurchaseOrder, c.PurchaseOrders},
		{LockSalesOrder, c.SalesOrders},
		{LockProduct, c.Products},
		{LockFinancialMovement, c.FinancialMovements},
	} {
		for _, id := range group.ids {
			keys = append(keys, LockKey{Kind: group.kind, ID: id})
		}
	}
	return keys
}

func sortedUnique(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
