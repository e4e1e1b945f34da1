// Package app wires the credo server runtime: config, logging, stores, and
// HTTP routes.
//
// It is intentionally small and deterministic to keep behavior predictable.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"credo/cmd/identity"
	"credo/cmd/internal/auth"
	"credo/cmd/internal/auth/api"
	"credo/cmd/internal/auth/session"
	"credo/cmd/internal/auth/token"
)

// App is the credo server runtime.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	sessions session.Store
	authAPI  *api.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	tokenCfg, err := token.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	codec, err := token.NewCodec(tokenCfg)
	if err != nil {
		return nil, err
	}

	users, sessions, dbPool, dbEnabled, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	svc, err := auth.NewService(users, sessions, codec, log)
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, err
	}

	mw := api.NewMiddleware(codec, log)
	handler := api.NewHandler(svc, mw, log, api.NewMetrics(prometheus.DefaultRegisterer))

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		sessions:  sessions,
		authAPI:   handler,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error. The expired-session sweeper runs alongside for the same lifetime.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.authAPI)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithSecurityHeaders(WithRequestLogging(mux, a.log)),
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.ReadTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go a.sweepExpiredSessions(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

// sweepExpiredSessions deletes long-expired session rows on an interval.
// Expiry enforcement happens on every refresh regardless; this only keeps the
// table from growing without bound.
func (a *App) sweepExpiredSessions(ctx context.Context) {
	if a.cfg.SessionSweepInterval <= 0 {
		return
	}
	t := time.NewTicker(a.cfg.SessionSweepInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := a.sessions.DeleteExpired(ctx, time.Now())
			if err != nil {
				a.log.Error("session.sweep.fail", "err", err)
				continue
			}
			if n > 0 {
				a.log.Info("session.sweep", "deleted", n)
			}
		}
	}
}

// newStores decides between Postgres-backed persistence and the in-memory dev
// stores, and prepares the schema when the database is enabled.
func newStores(ctx context.Context, cfg Config, log *slog.Logger) (identity.Store, session.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return identity.NewMemoryStore(), session.NewMemoryStore(), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, false, err
	}

	users := identity.NewPostgresStore(pool)
	sessions := session.NewPostgresStore(pool)
	if err := users.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}
	if err := sessions.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")
	return users, sessions, pool, true, nil
}
