package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"citizen-ai/internal/domain"
	"citizen-ai/internal/infra/metrics"
)

// ErrNoJobID возвращается для задачи без идентификатора.
var ErrNoJobID = errors.New("feedback job has no id")

const retryDelay = time.Second

// Worker разбирает очередь отзывов и сохраняет их в архив.
type Worker struct {
	queue     domain.FeedbackQueue
	dedup     domain.Cache
	archive   domain.FeedbackArchive
	analytics domain.BusinessMetricRepo
	dedupTTL  time.Duration
	retry     time.Duration
	log       zerolog.Logger
}

// NewWorker создаёт обработчик. dedup может быть nil: тогда повторы отсекает только архив.
func NewWorker(queue domain.FeedbackQueue, dedup domain.Cache, archive domain.FeedbackArchive, analytics domain.BusinessMetricRepo, dedupTTL time.Duration, logger zerolog.Logger) *Worker {
	return &Worker{
		queue:     queue,
		dedup:     dedup,
		archive:   archive,
		analytics: analytics,
		dedupTTL:  dedupTTL,
		retry:     retryDelay,
		log:       logger,
	}
}

// Run обрабатывает задачи до отмены ctx. Задача подтверждается только после сохранения,
// при ошибке архива она возвращается в очередь.
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, err := w.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error().Err(err).Msg("archive: ошибка чтения очереди")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.retry):
			}
			continue
		}

		jobLog := w.log.With().Str("job_id", job.ID).Str("category", string(job.Submission.Category)).Logger()
		err = w.Handle(ctx, job)
		switch {
		case err == nil, errors.Is(err, ErrNoJobID):
			if err != nil {
				jobLog.Warn().Err(err).Msg("archive: задача отброшена")
			}
			if ackErr := w.queue.Ack(ctx, job); ackErr != nil {
				jobLog.Error().Err(ackErr).Msg("archive: не удалось подтвердить задачу")
			}
		default:
			jobLog.Error().Err(err).Msg("archive: не удалось сохранить отзыв, задача возвращена в очередь")
			if nackErr := w.queue.Nack(context.WithoutCancel(ctx), job); nackErr != nil {
				jobLog.Error().Err(nackErr).Msg("archive: не удалось вернуть задачу в очередь")
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.retry):
			}
		}
	}
}

// Handle сохраняет одну задачу. Повторная доставка фиксируется бизнесовой метрикой.
func (w *Worker) Handle(ctx context.Context, job domain.FeedbackJob) error {
	if job.ID == "" {
		return ErrNoJobID
	}
	start := time.Now()
	defer func() { metrics.ArchiveDuration.Observe(time.Since(start).Seconds()) }()

	inserted := false
	save := func() error {
		ok, err := w.archive.SaveFeedback(ctx, job)
		if err != nil {
			return fmt.Errorf("сохранение отзыва: %w", err)
		}
		inserted = ok
		return nil
	}

	if w.dedup != nil {
		if _, err := w.dedup.Once(ctx, job.ID, w.dedupTTL, save); err != nil {
			return err
		}
	} else if err := save(); err != nil {
		return err
	}

	event := domain.BusinessMetricEventFeedbackArchived
	if !inserted {
		event = domain.BusinessMetricEventFeedbackDuplicate
		w.log.Info().Str("job_id", job.ID).Msg("archive: отзыв уже сохранён")
	}
	w.record(ctx, event, job)
	return nil
}

func (w *Worker) record(ctx context.Context, event string, job domain.FeedbackJob) {
	if w.analytics == nil {
		return
	}
	metric := domain.BusinessMetric{
		Event: event,
		Metadata: map[string]any{
			"job_id":    job.ID,
			"category":  string(job.Submission.Category),
			"sentiment": string(job.Sentiment),
		},
		OccurredAt: time.Now().UTC(),
	}
	if err := w.analytics.RecordBusinessMetric(ctx, metric); err != nil {
		w.log.Error().Err(err).Str("event", event).Msg("archive: не удалось записать бизнес-метрику")
	}
}
