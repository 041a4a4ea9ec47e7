package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/catalog-service/internal/adapter/postgres"
	redisadapter "github.com/user/catalog-service/internal/adapter/redis"
	"github.com/user/catalog-service/internal/adapter/scraper"
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

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// The queue is the worker's sole input; unlike the cache it cannot
		// degrade.
		log.Fatal("unable to connect to redis", zap.Error(err))
	}

	deps := usecase.RunnerDeps{
		Queue:       redisadapter.NewQueueRepo(rdb),
		Jobs:        postgres.NewScrapeJobRepo(dbpool),
		Extractor:   scraper.New(cfg.BaseURL, cfg.ScrapingDelay(), cfg.ScrapingTimeout(), log),
		Navigations: postgres.NewNavigationRepo(dbpool),
		Categories:  postgres.NewCategoryRepo(dbpool),
		Products:    postgres.NewProductRepo(dbpool),
		Details:     postgres.NewDetailRepo(dbpool),
		Cache:       redisadapter.NewCacheRepo(rdb, m, log),
	}
	policy := usecase.RetryPolicy{
		MaxAttempts: cfg.MaxRetries,
		Backoff:     usecase.ExponentialBackoff(cfg.RetryBackoff()),
	}

	runner := usecase.NewRunner(deps, policy, cfg.ScrapeWorkers, cfg.QueuePollTimeout(), m, nil, log)
	runner.Start()
	log.Info("scrape workers started", zap.Int("workers", cfg.ScrapeWorkers))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down workers")
	runner.Stop()
	log.Info("workers exited")
}
