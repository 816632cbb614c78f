package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movietracker/database"
	"movietracker/internal/cache"
	"movietracker/internal/config"
	"movietracker/internal/logging"
	"movietracker/internal/metrics"
	"movietracker/internal/microservices/http-api/handler"
	"movietracker/internal/microservices/http-api/middleware"
	"movietracker/internal/microservices/http-api/repository"
	"movietracker/internal/microservices/http-api/service"
	"movietracker/internal/middleware/auth"
	"movietracker/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

func bootstrap() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closer := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	slog.SetDefault(logger)
	return cfg, logger, func() { _ = closer.Close() }, nil
}

func runMigrate(ctx context.Context) error {
	cfg, logger, done, err := bootstrap()
	if err != nil {
		return err
	}
	defer done()

	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return database.Migrate(ctx, db, logger)
}

func runImport(ctx context.Context, path string) error {
	cfg, logger, done, err := bootstrap()
	if err != nil {
		return err
	}
	defer done()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db, logger); err != nil {
		return err
	}

	listCache, err := cache.New(ctx, cache.Options{
		Backend:       cfg.CacheBackend,
		RedisURL:      cfg.RedisURL,
		RedisPassword: cfg.RedisPassword,
		TTL:           cfg.CacheTTL,
	}, logger)
	if err != nil {
		return err
	}
	defer listCache.Close()

	stats, err := importCatalog(ctx, db, listCache, f, logger)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d items, %d titles\n", stats.Items, stats.Titles)
	return nil
}

// importCatalog loads the file and then drops cached list pages, so running
// servers sharing the cache see the new rows.
func importCatalog(ctx context.Context, db *gorm.DB, listCache cache.ListCache, r io.Reader, logger *slog.Logger) (database.ImportStats, error) {
	stats, err := database.Import(ctx, db, r, logger)
	if err != nil {
		return stats, err
	}
	if err := listCache.Invalidate(ctx); err != nil {
		logger.Warn("List cache invalidation failed; cached pages expire after CACHE_TTL", "error", err)
	}
	return stats, nil
}

func runServe(parent context.Context) error {
	cfg, logger, done, err := bootstrap()
	if err != nil {
		return err
	}
	defer done()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sentryOn, err := tracing.Init(tracing.Options{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.GoEnv,
		Release:          "movietracker@" + version,
		TracesSampleRate: cfg.SentryTracesSampleRate,
	})
	if err != nil {
		return err
	}
	if sentryOn {
		logger.Info("Sentry enabled", "environment", cfg.GoEnv)
		defer tracing.Flush(2 * time.Second)
	}

	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db, logger); err != nil {
		return err
	}

	listCache, err := cache.New(ctx, cache.Options{
		Backend:       cfg.CacheBackend,
		RedisURL:      cfg.RedisURL,
		RedisPassword: cfg.RedisPassword,
		TTL:           cfg.CacheTTL,
	}, logger)
	if err != nil {
		return err
	}
	defer listCache.Close()

	var m *metrics.Metrics
	var registry *prometheus.Registry
	if cfg.PrometheusEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if m, err = metrics.NewMetrics(registry); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	verifier, issuer := verifiers(cfg)
	gate := auth.NewGate(cfg.AdminEmail)
	if !cfg.LocalLoginEnabled() {
		logger.Info("Local admin login disabled; set JWT_SECRET and ADMIN_PASSWORD_HASH to enable it")
	}

	router := newRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		verifier: verifier,
		issuer:   issuer,
		gate:     gate,
		obs:      service.Observer{Cache: listCache, Metrics: m, Logger: logger},
		metrics:  m,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// verifiers builds the chain of accepted token sources and the local issuer,
// which is nil when local login is disabled.
func verifiers(cfg *config.Config) (auth.Verifier, *auth.TokenIssuer) {
	var chain auth.ChainVerifier
	var issuer *auth.TokenIssuer
	if cfg.JWTSecret != "" {
		chain = append(chain, auth.NewHMACVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience))
		if cfg.LocalLoginEnabled() {
			issuer = auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL)
		}
	}
	if cfg.JWKSURL != "" {
		chain = append(chain, auth.NewJWKSVerifier(cfg.JWKSURL, cfg.JWTIssuer, cfg.JWTAudience, nil))
	}
	if len(chain) == 1 {
		return chain[0], issuer
	}
	return chain, issuer
}

type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *gorm.DB
	verifier auth.Verifier
	issuer   *auth.TokenIssuer
	gate     *auth.Gate
	obs      service.Observer
	metrics  *metrics.Metrics
}

func newRouter(d routerDeps) *gin.Engine {
	if d.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.logger), d.metrics.GinMiddleware())

	handler.NewHealthHandler(func(ctx context.Context) error { return database.Ping(ctx, d.db) }).RegisterRoutes(r)
	if d.metrics != nil {
		r.GET("/metrics", gin.WrapH(d.metrics.Handler()))
	}

	// Repositories
	itemRepo := repository.NewCatalogItemRepository(d.db)
	titleRepo := repository.NewConstituentTitleRepository(d.db)

	// Services
	catalogSvc := service.NewCatalogService(itemRepo, d.gate, d.obs, service.CatalogOptions{
		HonorWatchedOnCreate:  d.cfg.CreateHonorWatched,
		RequireTuesdayRelease: d.cfg.RequireTuesdayRelease,
	})
	titleSvc := service.NewConstituentTitleService(titleRepo, itemRepo, d.gate, d.obs)
	authSvc := service.NewAuthService(d.gate, d.issuer, d.cfg.AdminEmail, d.cfg.AdminPasswordHash)

	limiter := middleware.NewRateLimiter(d.cfg.RateLimitRPS, d.cfg.RateLimitBurst).Middleware()

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.verifier))

	handler.NewAuthHandler(authSvc, d.gate, !d.cfg.IsDevelopment(), limiter).RegisterRoutes(api.Group("/auth"))
	handler.NewCatalogHandler(catalogSvc, d.gate, limiter).RegisterRoutes(api.Group("/items"))

	titles := handler.NewConstituentTitleHandler(titleSvc, d.gate, limiter)
	titles.RegisterItemRoutes(api.Group("/items/:item_id/titles"))
	titles.RegisterRoutes(api.Group("/titles"))

	return r
}
