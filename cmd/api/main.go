package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/sohailKhanIITD/recipe-app-api/internal/audit"
	"github.com/sohailKhanIITD/recipe-app-api/internal/auth"
	"github.com/sohailKhanIITD/recipe-app-api/internal/config"
	dbpkg "github.com/sohailKhanIITD/recipe-app-api/internal/db"
	"github.com/sohailKhanIITD/recipe-app-api/internal/observability"
	"github.com/sohailKhanIITD/recipe-app-api/internal/routes"
	"github.com/sohailKhanIITD/recipe-app-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := dbpkg.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	revoker, closeRedis := newRevoker(ctx, cfg.Redis, logger)
	defer closeRedis()

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	dispatcher := audit.NewDispatcher(audit.New(db), logger, 256)
	defer dispatcher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		DB:      db,
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Revoker: revoker,
		Store:   store,
		Audit:   dispatcher,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", cfg.Addr()), zap.String("env", cfg.App.Env))
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
		logger.Info("server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}
}

// newRevoker uses Redis when REDIS_ADDR is set and reachable, otherwise an
// in-process store that does not survive restarts.
func newRevoker(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (auth.Revoker, func()) {
	if cfg.Addr == "" {
		logger.Info("redis not configured, token revocation kept in memory")
		return auth.NewMemoryRevoker(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("unable to reach redis, token revocation kept in memory", zap.Error(err))
		_ = client.Close()
		return auth.NewMemoryRevoker(), func() {}
	}

	logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	return auth.NewRedisRevoker(client), func() { _ = client.Close() }
}
