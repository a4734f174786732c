package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/erp-core/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeForeignKeyViolation = "23503"
	codeRaiseException      = "P0001"
	codeNumericOutOfRange   = "22003"
)

// immutablePrefix prefijo del mensaje del trigger de stock_movements.
const immutablePrefix = "stock_movement_immutable"

// translate convierte violaciones de constraint en *domain.IntegrityError; el resto se envuelve con op.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &domain.IntegrityError{Kind: domain.IntegrityUnique, Constraint: pgErr.ConstraintName, Err: err}
		case codeCheckViolation, codeNumericOutOfRange:
			return &domain.IntegrityError{Kind: domain.IntegrityCheck, Constraint: pgErr.ConstraintName, Err: err}
		case codeForeignKeyViolation:
			return &domain.IntegrityError{Kind: domain.IntegrityForeignKey, Constraint: pgErr.ConstraintName, Err: err}
		case codeRaiseException:
			if strings.HasPrefix(pgErr.Message, immutablePrefix) {
				return &domain.IntegrityError{Kind: domain.IntegrityImmutable, Constraint: "stock_movements", Err: err}
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID las columnas id son UUID; un id mal formado equivale a una fila inexistente.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			out = append(out, id)
		}
	}
	return out
}
