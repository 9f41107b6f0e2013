package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/betroyal/internal/config"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

type apiConfig struct {
	Port            uint16        `envconfig:"API_PORT" default:"8080"`
	LogLevel        string        `envconfig:"APP_LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`
	StoreDriver     string        `envconfig:"STORE_DRIVER" default:"memory"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS"`
	SeedDemoGames   bool          `envconfig:"SEED_DEMO_GAMES" default:"true"`

	MetricsEnabled  bool          `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsInterval time.Duration `envconfig:"METRICS_INTERVAL" default:"1m"`

	Postgres config.PostgresConfig
	Auth     config.AuthConfig
	Ledger   config.LedgerConfig
	Admin    config.AdminConfig
}

func (c *apiConfig) validate() error {
	var errs []error

	switch c.StoreDriver {
	case storeMemory:
	case storePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("PG_DSN is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.Ledger.StartingBalance < 0 {
		errs = append(errs, errors.New("LEDGER_STARTING_BALANCE must not be negative"))
	}
	if c.Ledger.DepositMin <= 0 || c.Ledger.DepositMax < c.Ledger.DepositMin {
		errs = append(errs, fmt.Errorf("invalid deposit range %d..%d", c.Ledger.DepositMin, c.Ledger.DepositMax))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("AUTH_SESSION_TTL must be positive"))
	}
	if c.Admin.Username != "" && c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required with ADMIN_USERNAME"))
	}
	if c.MetricsEnabled && c.MetricsInterval <= 0 {
		errs = append(errs, errors.New("METRICS_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}
