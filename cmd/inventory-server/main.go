package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/smartsupplypro/inventory/pkg/audit"
	"github.com/smartsupplypro/inventory/pkg/authz"
	"github.com/smartsupplypro/inventory/pkg/config"
	"github.com/smartsupplypro/inventory/pkg/identity"
	"github.com/smartsupplypro/inventory/pkg/inventory"
	"github.com/smartsupplypro/inventory/pkg/middleware"
	"github.com/smartsupplypro/inventory/pkg/observability"
	"github.com/smartsupplypro/inventory/pkg/sso"
)

func main() {
	boot := logrus.New()

	cfg, err := config.LoadConfig()
	if err != nil {
		boot.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	// The field policy is fixed at startup; a misconfigured policy must
	// refuse to serve rather than fail open at request time.
	fieldPolicy := authz.DefaultItemFieldPolicy()
	if err := fieldPolicy.Validate(); err != nil {
		boot.Fatalf("Invalid field policy: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresURL)
	if err != nil {
		boot.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.PingContext(ctx); err != nil {
		boot.Fatalf("Failed to connect to database: %v", err)
	}
	if err := identity.Migrate(ctx, db); err != nil {
		boot.Fatalf("Failed to run identity migrations: %v", err)
	}
	if err := inventory.Migrate(ctx, db); err != nil {
		boot.Fatalf("Failed to run inventory migrations: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Audit trail: database sink always, file sink when configured.
	dbSink, err := audit.NewDBSink(db)
	if err != nil {
		boot.Fatalf("Failed to initialize audit sink: %v", err)
	}
	var auditSink audit.Sink = dbSink
	if cfg.Audit.FilePath != "" {
		fileSink, err := audit.NewFileSink(cfg.Audit.FilePath)
		if err != nil {
			boot.Fatalf("Failed to open audit file sink: %v", err)
		}
		auditSink = audit.NewMultiSink(dbSink, fileSink)
	}
	defer auditSink.Close()

	retention := audit.NewRetention(dbSink, audit.RetentionPolicy{
		RetentionDays: cfg.Audit.RetentionDays,
		Schedule:      cfg.Audit.RetentionSchedule,
	}, logger)
	if err := retention.Start(); err != nil {
		boot.Fatalf("Failed to start audit retention sweep: %v", err)
	}
	defer retention.Stop()

	allowList := authz.NewAllowList(cfg.Auth.AdminEmails)
	sessions := middleware.NewSessionStore(cfg.Auth.SessionTTL)
	provisioner := identity.NewProvisioner(identity.NewSQLUserStore(db), logger, metrics)

	store := inventory.NewSQLStore(db)
	service := inventory.NewService(store, fieldPolicy, auditSink, logger, metrics)

	router := mux.NewRouter()
	inventory.NewHandler(service).RegisterRoutes(router)

	// Login flow. A demo deployment may run without an OIDC client; the
	// readable whitelist still serves anonymously.
	if cfg.Auth.OIDCClientID != "" {
		provider, err := sso.NewProvider(ctx, sso.Config{
			IssuerURL:    cfg.Auth.OIDCIssuerURL,
			ClientID:     cfg.Auth.OIDCClientID,
			ClientSecret: cfg.Auth.OIDCClientSecret,
			RedirectURL:  cfg.Auth.OIDCRedirectURL,
			Scopes:       cfg.Auth.OIDCScopes,
		})
		if err != nil {
			boot.Fatalf("Failed to configure OIDC provider: %v", err)
		}
		ssoHandler := sso.NewHandler(provider, provisioner, sessions, allowList,
			cfg.Auth.LandingURL(), logger, metrics)
		ssoHandler.RegisterRoutes(router)
	} else {
		logger.Warn("no OIDC client configured; login flow disabled")
	}

	gate := middleware.NewGate(authz.NewRequestPolicy(), sessions,
		cfg.Auth.DemoReadonly, sso.LoginPath, logger, metrics)

	var handler http.Handler = router
	handler = gate.Handler(handler)
	handler = middleware.AccessLog(logger)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for k8s probes.
	health := observability.NewHealthChecker(db)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", health.Liveness)
	healthMux.HandleFunc("/ready", health.Readiness)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.WithField("addr", server.Addr).Info("inventory server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		boot.Fatalf("Server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("health server shutdown failed")
	}
	logger.Info("server stopped")
}
