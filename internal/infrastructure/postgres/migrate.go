package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/jhoicas/erp-core/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica las migraciones embebidas con golang-migrate.
type Migrator struct {
	migrate *migrate.Migrate
	log     *logger.Logger
}

// NewMigrator abre el driver pgx/v5 de golang-migrate sobre databaseURL (postgres:// o pgx5://).
func NewMigrator(databaseURL string, log *logger.Logger) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones embebidas: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return &Migrator{migrate: m, log: log.Named("migrate")}, nil
}

// migrateURL el driver pgx/v5 se registra con el esquema pgx5.
func migrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}

// Up aplica todas las migraciones pendientes.
func (m *Migrator) Up() error {
	m.log.Info().Msg("aplicando migraciones")
	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info().Msg("sin migraciones pendientes")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	return m.logVersion("migraciones aplicadas")
}

// Down revierte todas las migraciones.
func (m *Migrator) Down() error {
	m.log.Warn().Msg("revirtiendo todas las migraciones")
	if err := m.migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Steps aplica n migraciones (positivo sube, negativo baja).
func (m *Migrator) Steps(n int) error {
	m.log.Info().Int("steps", n).Msg("aplicando pasos de migración")
	if err := m.migrate.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migrate steps: %w", err)
	}
	return m.logVersion("pasos aplicados")
}

// Version versión actual; 0 si nunca se migró.
func (m *Migrator) Version() (uint, bool, error) {
	v, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrate version: %w", err)
	}
	return v, dirty, nil
}

// Force fija la versión sin ejecutar migraciones (recuperar un estado dirty).
func (m *Migrator) Force(version int) error {
	m.log.Warn().Int("version", version).Msg("forzando versión de migración")
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("migrate force %d: %w", version, err)
	}
	return nil
}

func (m *Migrator) logVersion(msg string) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.log.Info().Uint("version", v).Bool("dirty", dirty).Msg(msg)
	return nil
}

// Close libera source y conexión.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}
