package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/fastprodman/betroyal/internal/api"
	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/infra/logging"
	"github.com/fastprodman/betroyal/internal/infra/observability"
	"github.com/fastprodman/betroyal/internal/infra/pgutils"
	"github.com/fastprodman/betroyal/internal/jobs"
	"github.com/fastprodman/betroyal/internal/repos"
	"github.com/fastprodman/betroyal/internal/repos/memstore"
	"github.com/fastprodman/betroyal/internal/repos/pgstore"
	"github.com/fastprodman/betroyal/internal/services/accounts"
	"github.com/fastprodman/betroyal/internal/services/catalog"
	"github.com/fastprodman/betroyal/internal/services/ledger"
	"github.com/fastprodman/betroyal/internal/services/reporter"
	"github.com/fastprodman/betroyal/pkg/envconf"
	"github.com/fastprodman/betroyal/pkg/shutdownqueue"
)

const serviceName = "betroyal-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = cfg.validate()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	err = logging.SetupJSON(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	shutdownqueue.Add("store", func(context.Context) error {
		return store.Close()
	})

	mp, err := observability.NewMeterProvider(serviceName, cfg.MetricsEnabled, cfg.MetricsInterval)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	shutdownqueue.Add("metrics", mp.Shutdown)

	ledgerMetrics, err := observability.NewLedgerMetrics(mp)
	if err != nil {
		return fmt.Errorf("init ledger metrics: %w", err)
	}

	// --- Services ---
	accountsSrv := accounts.New(store, auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL), auth.NewRevocations())
	ledgerSrv := ledger.New(store, cfg.Ledger, ledger.WithMetrics(ledgerMetrics))
	catalogSrv := catalog.New(store)

	err = bootstrap(ctx, cfg, accountsSrv, catalogSrv)
	if err != nil {
		return err
	}

	scheduler := jobs.NewScheduler(ledgerSrv, accountsSrv, cfg.Ledger.PendingDepositTTL)

	err = scheduler.Start(ctx)
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	shutdownqueue.Add("scheduler", scheduler.Stop)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.NewRouter(api.Deps{
		Accounts:     accountsSrv,
		Ledger:       ledgerSrv,
		Catalog:      catalogSrv,
		Reporter:     reporter.New(ledgerSrv, catalogSrv),
		SessionTTL:   cfg.Auth.SessionTTL,
		SecureCookie: cfg.Auth.SecureCookie,
		CORSOrigins:  cfg.CORSOrigins,
	}))

	shutdownqueue.Add("http server", func(c context.Context) error {
		log.Info("shutting down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	log.WithFields(log.Fields{
		"port":  cfg.Port,
		"store": cfg.StoreDriver,
	}).Info("API started")

	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

func openStore(ctx context.Context, cfg *apiConfig) (repos.Store, error) {
	if cfg.StoreDriver == storeMemory {
		log.Warn("using in-memory store; data is lost on restart")
		return memstore.New(cfg.Ledger.StartingBalance), nil
	}

	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	return pgstore.New(db, cfg.Ledger.StartingBalance), nil
}

func bootstrap(ctx context.Context, cfg *apiConfig, acc *accounts.Service, cat *catalog.Service) error {
	if cfg.Admin.Username != "" {
		admin, err := acc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}

		log.WithField("user_id", admin.ID).Info("admin account ready")
	}

	if cfg.SeedDemoGames {
		n, err := cat.SeedDemo(ctx)
		if err != nil {
			return fmt.Errorf("seed games: %w", err)
		}

		if n > 0 {
			log.WithField("count", n).Info("demo games seeded")
		}
	}

	return nil
}
