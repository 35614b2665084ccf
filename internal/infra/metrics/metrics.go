package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	SentimentClassifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_classifications_total",
		Help: "Количество определений тональности по результату",
	}, []string{"label"})

	FeedbackSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_submissions_total",
		Help: "Принятые отзывы по категориям и тональности",
	}, []string{"category", "sentiment"})

	FeedbackSubmitCanceled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feedback_submit_canceled_total",
		Help: "Отправки, отменённые до истечения задержки",
	})

	FeedbackSinkErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_sink_errors_total",
		Help: "Ошибки передачи отзывов в очередь",
	}, []string{"sink"})

	ViewNavigations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "view_navigations_total",
		Help: "Переходы между экранами",
	}, []string{"view"})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_sessions",
		Help: "Текущее количество сессий",
	})

	ArchiveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedback_archive_seconds",
		Help:    "Время сохранения отзыва в архив",
		Buckets: prometheus.DefBuckets,
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 60},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		SentimentClassifications,
		FeedbackSubmissions,
		FeedbackSubmitCanceled,
		FeedbackSinkErrors,
		ViewNavigations,
		ActiveSessions,
		ArchiveDuration,
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics и блокируется до отмены ctx.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	logger.Info().Str("addr", addr).Msg("metrics: server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration записывает длительность и токены генерации LLM.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens, totalTokens int) {
	if model == "" {
		model = "unknown"
	}
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
	if totalTokens <= 0 {
		totalTokens = promptTokens + completionTokens
	}
	if totalTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
	}
}

// IncSentiment увеличивает счётчик определений тональности.
func IncSentiment(label string) {
	SentimentClassifications.WithLabelValues(label).Inc()
}

// IncSubmission увеличивает счётчик принятых отзывов.
func IncSubmission(category, sentiment string) {
	if sentiment == "" {
		sentiment = "unset"
	}
	FeedbackSubmissions.WithLabelValues(category, sentiment).Inc()
}

// IncNavigation увеличивает счётчик переходов на экран.
func IncNavigation(view string) {
	ViewNavigations.WithLabelValues(view).Inc()
}
