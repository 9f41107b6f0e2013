package api

import (
	"time"

	"github.com/fastprodman/betroyal/internal/services/accounts"
	"github.com/fastprodman/betroyal/internal/services/catalog"
	"github.com/fastprodman/betroyal/internal/services/ledger"
	"github.com/fastprodman/betroyal/internal/services/reporter"
)

const sessionCookie = "session"

// Deps are the services the HTTP layer delegates to.
type Deps struct {
	Accounts *accounts.Service
	Ledger   *ledger.Service
	Catalog  *catalog.Service
	Reporter *reporter.Reporter

	SessionTTL   time.Duration
	SecureCookie bool
	CORSOrigins  []string
}

// HandlerProvider exposes the services as HTTP handlers.
type HandlerProvider struct {
	accounts *accounts.Service
	ledger   *ledger.Service
	catalog  *catalog.Service
	reporter *reporter.Reporter

	sessionTTL   time.Duration
	secureCookie bool
}

func NewHandler(d Deps) *HandlerProvider {
	return &HandlerProvider{
		accounts:     d.Accounts,
		ledger:       d.Ledger,
		catalog:      d.Catalog,
		reporter:     d.Reporter,
		sessionTTL:   d.SessionTTL,
		secureCookie: d.SecureCookie,
	}
}
