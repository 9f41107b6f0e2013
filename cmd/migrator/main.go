package main

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"

	"github.com/fastprodman/betroyal/internal/infra/logging"
	"github.com/fastprodman/betroyal/internal/infra/pgutils"
	"github.com/fastprodman/betroyal/pkg/envconf"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migratorConfig struct {
	DSN      string `envconfig:"PG_DSN" required:"true"`
	LogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	// Down rolls back every migration instead of applying them.
	Down bool `envconfig:"MIGRATE_DOWN" default:"false"`
}

func main() {
	err := migrateAll()
	if err != nil {
		log.WithError(err).Error("migration run failed")
		os.Exit(1)
	}

	log.Info("migration run finished successfully")
}

func migrateAll() error {
	cfg := new(migratorConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	err = logging.SetupJSON(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	db, err := sql.Open(pgutils.DriverName, cfg.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	//nolint:errcheck
	defer db.Close()

	err = db.Ping()
	if err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init postgres driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	if cfg.Down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read version: %w", err)
	}

	log.WithFields(log.Fields{"version": version, "dirty": dirty, "down": cfg.Down}).Info("migrations applied")

	return nil
}
