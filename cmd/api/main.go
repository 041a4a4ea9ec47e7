package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/catalog-service/internal/adapter/postgres"
	redisadapter "github.com/user/catalog-service/internal/adapter/redis"
	"github.com/user/catalog-service/internal/delivery/http/handler"
	"github.com/user/catalog-service/internal/delivery/http/router"
	"github.com/user/catalog-service/internal/usecase"
	"github.com/user/catalog-service/pkg/config"
	"github.com/user/catalog-service/pkg/logger"
	"github.com/user/catalog-service/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	m := metrics.New()

	ctx := context.Background()

	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("unable to connect to postgres", zap.Error(err))
	}
	defer dbpool.Close()
	log.Info("postgres connection pool established")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Repositories
	navRepo := postgres.NewNavigationRepo(dbpool)
	catRepo := postgres.NewCategoryRepo(dbpool)
	prodRepo := postgres.NewProductRepo(dbpool)
	detailRepo := postgres.NewDetailRepo(dbpool)
	jobRepo := postgres.NewScrapeJobRepo(dbpool)
	historyRepo := postgres.NewHistoryRepo(dbpool)
	cache := redisadapter.NewCacheRepo(rdb, m, log)
	queue := redisadapter.NewQueueRepo(rdb)

	// Use cases
	fresh := usecase.NewFreshness(cfg.CacheTTLHours, nil)
	catalog := usecase.NewCatalogService(navRepo, catRepo, prodRepo, detailRepo, jobRepo, historyRepo, cache, log)
	scrape := usecase.NewScrapeService(navRepo, catRepo, prodRepo, queue, cache, fresh, cfg.BaseURL, nil, log)

	// HTTP server
	h := handler.New(catalog, scrape,
		func(ctx context.Context) error { return dbpool.Ping(ctx) },
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		log,
	)
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(h, m, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting api server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
