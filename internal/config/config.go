package config

import "time"

type PostgresConfig struct {
	DSN             string        `envconfig:"PG_DSN"`
	MaxOpenConns    int           `envconfig:"PG_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"PG_MAX_IDLE_CONNS" default:"5"`
	ConnMaxIdleTime time.Duration `envconfig:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `envconfig:"PG_CONN_MAX_LIFETIME" default:"1h"`
}

type AuthConfig struct {
	JWTSecret    string        `envconfig:"AUTH_JWT_SECRET" required:"true"`
	SessionTTL   time.Duration `envconfig:"AUTH_SESSION_TTL" default:"24h"`
	SecureCookie bool          `envconfig:"AUTH_SECURE_COOKIE" default:"false"`
}

type LedgerConfig struct {
	StartingBalance   int64         `envconfig:"LEDGER_STARTING_BALANCE" default:"5000"`
	DepositMin        int64         `envconfig:"LEDGER_DEPOSIT_MIN" default:"100"`
	DepositMax        int64         `envconfig:"LEDGER_DEPOSIT_MAX" default:"100000"`
	PendingDepositTTL time.Duration `envconfig:"LEDGER_PENDING_DEPOSIT_TTL" default:"72h"`
}

// AdminConfig bootstraps the back-office account. Empty username disables it.
type AdminConfig struct {
	Username string `envconfig:"ADMIN_USERNAME"`
	Password string `envconfig:"ADMIN_PASSWORD"`
	Email    string `envconfig:"ADMIN_EMAIL" default:"admin@betroyal.com"`
}
