package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"citizen-ai/internal/adapters/assistant"
	"citizen-ai/internal/adapters/sentiment"
	"citizen-ai/internal/adapters/web"
	"citizen-ai/internal/domain"
	"citizen-ai/internal/infra/config"
	httpinfra "citizen-ai/internal/infra/http"
	applog "citizen-ai/internal/infra/log"
	"citizen-ai/internal/infra/metrics"
	"citizen-ai/internal/infra/openai"
	"citizen-ai/internal/infra/queue"
	"citizen-ai/internal/usecase/chat"
	"citizen-ai/internal/usecase/feedback"
	"citizen-ai/internal/usecase/navigation"
	"citizen-ai/internal/usecase/session"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := openSink(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("sink", cfg.Feedback.Sink).Msg("web: не удалось подключить приёмник отзывов")
	}
	defer closeSink()

	classifier := sentiment.NewKeyword()
	stub := assistant.NewStub()
	var primary domain.Assistant = stub
	if cfg.OpenAI.APIKey != "" {
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout, openai.WithRetries(cfg.OpenAI.Retries, 0))
		primary = assistant.NewOpenAI(client, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
		logger.Info().Str("model", cfg.OpenAI.Model).Msg("web: ассистент OpenAI включён")
	}

	feedbackLog := logger.With().Str("component", "feedback").Logger()
	chatLog := logger.With().Str("component", "chat").Logger()
	mounts := navigation.Mounts{
		Feedback: func(n domain.Notifier) *feedback.Controller {
			return feedback.NewController(classifier, n, sink, cfg.Feedback.SubmitDelay, feedbackLog)
		},
		Chat: func() *chat.Conversation {
			return chat.NewConversation(primary, stub, chatLog)
		},
	}
	sessions := session.NewRegistry(func() *navigation.Shell {
		return navigation.NewShell(mounts)
	}, cfg.Session.TTL, logger.With().Str("component", "session").Logger())

	handler, err := web.NewHandler(sessions, classifier, cfg.Session.TTL, logger.With().Str("component", "web").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("web: не удалось подготовить шаблоны")
	}
	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	handler.Register(server.Router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.StartServer(gctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)
	})
	g.Go(func() error {
		return sessions.Run(gctx, cfg.Session.Sweep)
	})
	g.Go(func() error {
		return server.Start(cfg.HTTPAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("web: остановка")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("web: остановлен с ошибкой")
		return
	}
	logger.Info().Msg("web: остановлен")
}

// openSink выбирает приёмник принятых отзывов по конфигурации.
func openSink(cfg config.AppConfig, logger zerolog.Logger) (domain.FeedbackSink, func(), error) {
	switch cfg.Feedback.Sink {
	case config.SinkDiscard, "":
		return queue.NewDiscard(logger.With().Str("component", "sink").Logger()), func() {}, nil
	case config.SinkRedis:
		if cfg.RedisAddr == "" {
			return nil, nil, fmt.Errorf("не указан REDIS_ADDR")
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return queue.NewRedisFeedbackQueue(client, cfg.Feedback.QueueKey), func() { _ = client.Close() }, nil
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
	return nil, nil, fmt.Errorf("неизвестный приёмник %q", cfg.Feedback.Sink)
}
