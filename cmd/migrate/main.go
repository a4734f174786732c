// migrate aplica o revierte las migraciones embebidas del esquema.
//
// Uso: go run ./cmd/migrate [up|down|steps N|version|force V]
// Por defecto ejecuta up. Toma la conexión de DATABASE_URL o DB_*.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/erp-core/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Named("migrate")

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer m.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if err := run(m, cmd, os.Args[2:]); err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		m.Close()
		os.Exit(1)
	}
}

func run(m *postgres.Migrator, cmd string, args []string) error {
	switch cmd {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps", "force":
		if len(args) != 1 {
			return fmt.Errorf("%s requiere un número", cmd)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%s: %q no es un número", cmd, args[0])
		}
		if cmd == "steps" {
			return m.Steps(n)
		}
		return m.Force(n)
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	}
	return fmt.Errorf("comando desconocido %q (up|down|steps N|version|force V)", cmd)
}
