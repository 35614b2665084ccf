package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"citizen-ai/internal/adapters/repo"
	"citizen-ai/internal/domain"
	"citizen-ai/internal/infra/cache"
	"citizen-ai/internal/infra/config"
	"citizen-ai/internal/infra/db"
	applog "citizen-ai/internal/infra/log"
	"citizen-ai/internal/infra/metrics"
	"citizen-ai/internal/infra/queue"
	"citizen-ai/internal/usecase/archive"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.PGDSN == "" {
		logger.Fatal().Msg("archiver: не указан PG_DSN")
	}
	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("archiver: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)
	if err := repoAdapter.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("archiver: не удалось подготовить схему")
	}

	var (
		redisClient *redis.Client
		dedup       domain.Cache
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		dedup = cache.NewRedis(redisClient, "feedback_archived:")
	}

	jobs, closeQueue, err := openQueue(cfg, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Str("sink", cfg.Feedback.Sink).Msg("archiver: не удалось подключить очередь")
	}
	defer closeQueue()

	worker := archive.NewWorker(jobs, dedup, repoAdapter, repoAdapter, cfg.Archive.DedupTTL, logger.With().Str("component", "archive").Logger())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.StartServer(gctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)
	})
	g.Go(func() error {
		logger.Info().Msg("archiver: запуск обработки очереди")
		return worker.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("archiver: остановлен с ошибкой")
		return
	}
	logger.Info().Msg("archiver: остановлен")
}

// openQueue подключает очередь, из которой веб-сервис публикует отзывы.
func openQueue(cfg config.AppConfig, redisClient *redis.Client) (domain.FeedbackQueue, func(), error) {
	switch cfg.Feedback.Sink {
	case config.SinkRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("не указан REDIS_ADDR")
		}
		return queue.NewRedisFeedbackQueue(redisClient, cfg.Feedback.QueueKey), func() {}, nil
	case config.SinkRabbitMQ:
		if cfg.AMQPURL == "" {
			return nil, nil, fmt.Errorf("не указан AMQP_URL")
		}
		q, err := queue.NewRabbitFeedbackQueue(cfg.AMQPURL, cfg.Feedback.QueueKey)
		if err != nil {
			return nil, nil, err
		}
		return q, func() { _ = q.Close() }, nil
	}
	return nil, nil, fmt.Errorf("архиватору нужен приёмник redis или rabbitmq, указан %q", cfg.Feedback.Sink)
}
