package repository

import "context"

// Store repositorios atados a una misma transacción (o al pool, fuera de ella).
type Store interface {
	Products() ProductRepository
	Suppliers() SupplierRepository
	StockMovements() StockMovementRepository
	PurchaseOrders() PurchaseOrderRepository
	SalesOrders() SalesOrderRepository
	FinancialMovements() FinancialMovementRepository
	// Lock bloquea filas descubiertas a mitad de la transacción, con el mismo orden canónico
	// que TxRunner.Run. Devuelve *domain.NotFoundError si alguna no existe.
	Lock(ctx context.Context, locks LockSet) error
}

// TxRunner unidad de trabajo: abre transacción, bloquea locks en orden canónico,
// ejecuta fn y hace commit; cualquier error revierte todo.
type TxRunner interface {
	Run(ctx context.Context, locks LockSet, fn func(ctx context.Context, s Store) error) error
	// Reader Store para lecturas fuera de transacción. Lock no está soportado.
	Reader() Store
}
