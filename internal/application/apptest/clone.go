package apptest

import (
	"github.com/jhoicas/erp-core/internal/domain/entity"
)

func (st state) clone() state {
	out := state{
		products:  make(map[string]*entity.Product, len(st.products)),
		suppliers: make(map[string]*entity.Supplier, len(st.suppliers)),
		movements: make([]*entity.StockMovement, 0, len(st.movements)),
		pos:       make(map[string]*entity.PurchaseOrder, len(st.pos)),
		poLines:   make([]*entity.PurchaseOrderLine, 0, len(st.poLines)),
		sos:       make(map[string]*entity.SalesOrder, len(st.sos)),
		soLines:   make([]*entity.SalesOrderLine, 0, len(st.soLines)),
		fin:       make(map[string]*entity.FinancialMovement, len(st.fin)),
	}
	for k, v := range st.products {
		out.products[k] = cloneProduct(v)
	}
	for k, v := range st.suppliers {
		c := *v
		out.suppliers[k] = &c
	}
	for _, v := range st.movements {
		c := *v
		out.movements = append(out.movements, &c)
	}
	for k, v := range st.pos {
		out.pos[k] = clonePO(v)
	}
	for _, v := range st.poLines {
		c := *v
		out.poLines = append(out.poLines, &c)
	}
	for k, v := range st.sos {
		out.sos[k] = cloneSO(v)
	}
	for _, v := range st.soLines {
		c := *v
		out.soLines = append(out.soLines, &c)
	}
	for k, v := range st.fin {
		out.fin[k] = v.Clone()
	}
	return out
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func clonePO(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := *o
	c.ConfirmedAt = clonePtr(o.ConfirmedAt)
	c.ReceivedAt = clonePtr(o.ReceivedAt)
	c.CancelledAt = clonePtr(o.CancelledAt)
	c.Lines = nil
	return &c
}

func cloneSO(o *entity.SalesOrder) *entity.SalesOrder {
	c := *o
	c.ConfirmedAt = clonePtr(o.ConfirmedAt)
	c.CancelledAt = clonePtr(o.CancelledAt)
	c.Lines = nil
	return &c
}
