package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"citizen-ai/internal/domain"
	"citizen-ai/internal/infra/metrics"
)

// execer: подмножество pgxpool.Pool, которое использует адаптер.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres реализует архив отзывов и бизнесовые метрики на основе pgxpool.
type Postgres struct {
	db execer
}

var (
	_ domain.FeedbackArchive    = (*Postgres)(nil)
	_ domain.BusinessMetricRepo = (*Postgres)(nil)
)

// Schema создаёт таблицы архива.
const Schema = `
CREATE TABLE IF NOT EXISTS feedback_submissions (
    job_id       UUID PRIMARY KEY,
    name         TEXT NOT NULL,
    email        TEXT NOT NULL,
    category     TEXT NOT NULL,
    subject      TEXT NOT NULL,
    message      TEXT NOT NULL,
    sentiment    TEXT,
    submitted_at TIMESTAMPTZ NOT NULL,
    archived_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS business_metrics (
    id          BIGSERIAL PRIMARY KEY,
    event       TEXT NOT NULL,
    metadata    JSONB,
    occurred_at TIMESTAMPTZ NOT NULL
);
`

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// EnsureSchema создаёт таблицы, если их ещё нет.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.db.Exec(ctx, Schema)
	metrics.ObserveNetworkRequest("postgres", "schema_ensure", "feedback_submissions", start, err)
	if err != nil {
		return fmt.Errorf("создание схемы: %w", err)
	}
	return nil
}

// SaveFeedback сохраняет отзыв. Повторная запись той же задачи игнорируется.
func (p *Postgres) SaveFeedback(ctx context.Context, job domain.FeedbackJob) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var sentiment *string
	if job.Sentiment != "" {
		s := string(job.Sentiment)
		sentiment = &s
	}
	s := job.Submission

	start := time.Now()
	tag, err := p.db.Exec(ctx, `
INSERT INTO feedback_submissions (job_id, name, email, category, subject, message, sentiment, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (job_id) DO NOTHING
`, job.ID, s.Name, s.Email, string(s.Category), s.Subject, s.Message, sentiment, job.SubmittedAt)
	metrics.ObserveNetworkRequest("postgres", "feedback_submissions_insert", "feedback_submissions", start, err)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RecordBusinessMetric сохраняет бизнесовую метрику в БД.
func (p *Postgres) RecordBusinessMetric(ctx context.Context, metric domain.BusinessMetric) error {
	if metric.Event == "" {
		return nil
	}
	if metric.OccurredAt.IsZero() {
		metric.OccurredAt = time.Now().UTC()
	}

	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var payload []byte
	if metric.Metadata != nil {
		if data, err := json.Marshal(metric.Metadata); err == nil {
			payload = data
		}
	}

	start := time.Now()
	_, err := p.db.Exec(ctx, `
INSERT INTO business_metrics (event, metadata, occurred_at)
VALUES ($1, $2, $3)
`, metric.Event, payload, metric.OccurredAt)
	metrics.ObserveNetworkRequest("postgres", "business_metrics_insert", "business_metrics", start, err)
	return err
}
