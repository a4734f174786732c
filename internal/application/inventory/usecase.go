package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// Service ledger de inventario: cada movimiento ajusta Product.stock con la fila del producto bloqueada.
type Service struct {
	tx  repository.TxRunner
	log *logger.Logger
	rec ports.TransitionRecorder
	now func() time.Time
}

// NewService construye el servicio. rec puede ser nil.
func NewService(tx repository.TxRunner, log *logger.Logger, rec ports.TransitionRecorder) *Service {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Service{tx: tx, log: log.Named("inventory"), rec: rec, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordMovementInput entrada para registrar un movimiento.
type RecordMovementInput struct {
	ProductID string
	Type      entity.MovementType
	Quantity  int
	Note      string
	Actor     string
}

func (in RecordMovementInput) draft() *entity.StockMovement {
	return &entity.StockMovement{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Note:      strings.TrimSpace(in.Note),
		CreatedBy: in.Actor,
	}
}

// RecordMovement abre su propia transacción: bloquea el producto, aplica el movimiento y hace commit.
// Una salida que dejaría stock negativo devuelve *domain.InsufficientStockError y no escribe nada.
func (s *Service) RecordMovement(ctx context.Context, in RecordMovementInput) (*entity.StockMovement, error) {
	if err := entity.StockMovementError(entity.ValidateStockMovement(in.draft(), nil), false); err != nil {
		return nil, err
	}
	var out *entity.StockMovement
	err := s.tx.Run(ctx, repository.LockSet{Products: []string{in.ProductID}}, func(ctx context.Context, st repository.Store) error {
		m, err := s.ApplyInTx(ctx, st, in)
		out = m
		return err
	})
	if err != nil {
		s.fail("record", in.ProductID, err)
		return nil, err
	}
	s.rec.Transition("stock_movement", strings.ToLower(string(out.Type)))
	s.log.Info().
		Str("product_id", out.ProductID).
		Str("movement_type", string(out.Type)).
		Int("quantity", out.Quantity).
		Str("actor", out.CreatedBy).
		Msg("movimiento de inventario registrado")
	return out, nil
}

// ApplyInTx aplica un movimiento dentro de la transacción del caller (compras, ventas).
// El caller debe tener bloqueada la fila del producto (LockSet o Store.Lock).
// Si retorna error el caller debe abortar su transacción.
func (s *Service) ApplyInTx(ctx context.Context, st repository.Store, in RecordMovementInput) (*entity.StockMovement, error) {
	m := in.draft()
	if err := entity.StockMovementError(entity.ValidateStockMovement(m, nil), false); err != nil {
		return nil, err
	}
	product, err := st.Products().GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, domain.NotFound("producto", in.ProductID)
	}
	if !product.Active() {
		return nil, domain.Invalid("product_id", fmt.Sprintf("El producto %s está inactivo.", product.SKU))
	}
	if err := m.ApplyTo(product); err != nil {
		return nil, err
	}

	now := s.now()
	m.ID = uuid.New().String()
	m.CreatedAt = now
	if err := st.StockMovements().Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create stock movement: %w", err)
	}
	if err := st.Products().UpdateStock(ctx, product.ID, product.Stock, now); err != nil {
		return nil, fmt.Errorf("update product stock: %w", err)
	}
	s.log.Debug().
		Str("product_id", product.ID).
		Str("movement_type", string(m.Type)).
		Int("quantity", m.Quantity).
		Int("stock", product.Stock).
		Msg("stock actualizado")
	return m, nil
}

// MovementFilter filtros crudos del listado (tal como llegan de la API).
type MovementFilter struct {
	ProductID string
	Type      string
	From      string
	To        string
	Page      string
	PageSize  string
	Ordering  string
}

var movementOrdering = []string{"created_at", "quantity"}

// ListMovements lista el ledger con filtros, paginación y orden de lista blanca.
func (s *Service) ListMovements(ctx context.Context, f MovementFilter) (*repository.Page[entity.StockMovement], error) {
	rf := repository.StockMovementFilter{ProductID: strings.TrimSpace(f.ProductID)}
	if t := strings.ToUpper(strings.TrimSpace(f.Type)); t != "" {
		rf.Type = entity.MovementType(t)
		if !rf.Type.Valid() {
			return nil, domain.Invalid("movement_type", "movement_type inválido. Permitidos: IN, OUT")
		}
	}
	var err error
	if rf.Range, err = repository.ParseTimeRange(f.From, f.To); err != nil {
		return nil, err
	}
	if rf.Page, err = repository.ParsePage(f.Page, f.PageSize); err != nil {
		return nil, err
	}
	if rf.Ordering, err = repository.ParseOrdering(f.Ordering, movementOrdering, "-created_at"); err != nil {
		return nil, err
	}
	page, err := s.tx.Reader().StockMovements().List(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return page, nil
}

// StockAudit compara el stock materializado con Σ(IN) − Σ(OUT) del ledger. No modifica nada.
func (s *Service) StockAudit(ctx context.Context, productID string) (*entity.StockAudit, error) {
	r := s.tx.Reader()
	product, err := r.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, domain.NotFound("producto", productID)
	}
	in, out, err := r.StockMovements().Totals(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("stock movement totals: %w", err)
	}
	audit := &entity.StockAudit{
		ProductID:  product.ID,
		SKU:        product.SKU,
		Stock:      product.Stock,
		TotalIn:    in,
		TotalOut:   out,
		Calculated: in - out,
	}
	audit.Drift = audit.Stock - audit.Calculated
	if !audit.InSync() {
		s.log.Warn().Str("product_id", product.ID).Int("stock", audit.Stock).Int("calculated", audit.Calculated).
			Msg("stock materializado difiere del ledger")
	}
	return audit, nil
}

func (s *Service) fail(action, productID string, err error) {
	if ports.IsBusinessError(err) {
		s.rec.Rejected("stock_movement", action, ports.RejectReason(err))
		s.log.Debug().Err(err).Str("product_id", productID).Msg("movimiento rechazado")
		return
	}
	s.log.Error().Err(err).Str("product_id", productID).Msg("error registrando movimiento")
}
