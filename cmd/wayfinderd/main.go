// Command wayfinderd serves the context and workspace resolution engine:
// session-scoped navigation resolution, org authorization binding, and
// rendered navigation surfaces for the learning platform frontend.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuutta/wayfinder/pkg/api"
	"github.com/tuutta/wayfinder/pkg/auth"
	"github.com/tuutta/wayfinder/pkg/backend"
	"github.com/tuutta/wayfinder/pkg/config"
	"github.com/tuutta/wayfinder/pkg/flags"
	"github.com/tuutta/wayfinder/pkg/middleware"
	"github.com/tuutta/wayfinder/pkg/navrender"
	"github.com/tuutta/wayfinder/pkg/observability"
	"github.com/tuutta/wayfinder/pkg/policy"
	"github.com/tuutta/wayfinder/pkg/urlparse"
	"github.com/tuutta/wayfinder/pkg/workspace"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("Invalid configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.WithField("port", cfg.Server.Port).Info("Starting wayfinderd")

	ctx := context.Background()

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		os.Exit(1)
	}

	table, err := loadPolicyTable(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to load policy table")
		os.Exit(1)
	}

	var gate flags.Gate
	if cfg.Policy.FlagsPath != "" {
		fileGate, err := flags.NewFileGate(cfg.Policy.FlagsPath, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to open feature-flag file")
			os.Exit(1)
		}
		defer fileGate.Close()
		gate = fileGate
	}

	renderer, err := navrender.NewRenderer(table, gate)
	if err != nil {
		logger.WithError(err).Error("Failed to build navigation renderer")
		os.Exit(1)
	}

	client := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithTokenSource(auth.RawTokenFromContext),
	)

	store, db, redisClient, err := buildStore(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize workspace store")
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := observability.NewMetrics(registry)
	resolverMetrics := workspace.NewMetrics(registry)

	sessions := api.NewSessionRegistry(workspace.Config{
		Parser:     urlparse.NewParser(),
		Table:      table,
		Backend:    client,
		Store:      store,
		Prefetcher: workspace.NewPrefetcher(client, cfg.Backend.PrefetchTTL),
		Logger:     logger,
		Metrics:    resolverMetrics,
	}, time.Hour)

	server := api.NewServer(sessions, renderer, httpMetrics, logger)
	router := server.Router()

	verifier, optional, err := buildVerifier(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize OIDC verifier")
		os.Exit(1)
	}

	rateLimiter := middleware.NewRateLimitMiddleware()
	rateCtx, cancelRate := context.WithCancel(ctx)
	defer cancelRate()
	rateLimiter.StartCleanup(rateCtx)

	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Recovery(logger))
	if cfg.Observability.MetricsEnabled {
		router.Use(observability.HTTPMetricsMiddleware(httpMetrics))
	}
	router.Use(middleware.NewAuthMiddleware(verifier, optional).Handler)
	router.Use(rateLimiter.Handler)

	health := observability.NewHealthChecker(db, redisClient)
	router.HandleFunc("/healthz", health.Liveness).Methods("GET")
	router.HandleFunc("/readyz", health.Readiness).Methods("GET")
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(router, registry)
	}

	var janitor *workspace.Janitor
	if sweeper, ok := store.(workspace.Sweeper); ok {
		janitor, err = workspace.NewJanitor(sweeper, cfg.Store.JanitorSchedule, cfg.Store.TTL, logger)
		if err != nil {
			logger.WithError(err).Error("Invalid janitor schedule")
			os.Exit(1)
		}
		janitor.Start()
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		if janitor != nil {
			janitor.Stop()
		}
		return nil
	})
	if db != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error { return db.Close() })
	}
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error { return redisClient.Close() })
	}
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, otelProviders, logger)
	})

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("Listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server failed")
			os.Exit(1)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

func loadPolicyTable(cfg *config.Config) (*policy.Table, error) {
	if cfg.Policy.TablePath != "" {
		return policy.LoadFile(cfg.Policy.TablePath)
	}
	return policy.Default()
}

// buildStore selects the state backend. The returned db and redis handles
// are nil unless that backend is active; they feed the health checker.
func buildStore(cfg *config.Config) (workspace.Store, *sql.DB, *redis.Client, error) {
	switch cfg.Store.Type {
	case "sqlite":
		db, err := sql.Open("sqlite3", cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		store, err := workspace.NewSQLStore(db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return store, db, nil, nil
	case "redis":
		opts, err := redis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Store.RedisPassword != "" {
			opts.Password = cfg.Store.RedisPassword
		}
		if cfg.Store.RedisDB != 0 {
			opts.DB = cfg.Store.RedisDB
		}
		client := redis.NewClient(opts)
		return workspace.NewRedisStore(client, cfg.Store.TTL), nil, client, nil
	default:
		store, err := workspace.NewFileStore(cfg.Store.FileRoot)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, nil, nil
	}
}

// buildVerifier returns the token verifier and whether unauthenticated
// requests may pass through as anonymous. Without an issuer (local dev)
// every request is anonymous and the resolver redirects to the landing page.
func buildVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, bool, error) {
	if cfg.Auth.OIDCIssuer == "" {
		return auth.StaticVerifier{}, true, nil
	}
	verifier, err := auth.NewOIDCVerifier(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID)
	if err != nil {
		return nil, false, err
	}
	return verifier, true, nil
}
