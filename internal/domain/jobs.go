package domain

import (
	"context"
	"time"
)

// FeedbackJob содержит принятый отзыв для архивации.
type FeedbackJob struct {
	ID          string             `json:"job_id"`
	Submission  FeedbackSubmission `json:"submission"`
	Sentiment   SentimentLabel     `json:"sentiment,omitempty"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// FeedbackSink принимает отзывы после имитации отправки.
type FeedbackSink interface {
	Publish(ctx context.Context, job FeedbackJob) error
}

// FeedbackQueue описывает очередь отзывов, которую разбирает архиватор.
type FeedbackQueue interface {
	FeedbackSink
	Pop(ctx context.Context) (FeedbackJob, error)
	// Ack подтверждает, что задача сохранена и её можно удалить.
	Ack(ctx context.Context, job FeedbackJob) error
	// Nack возвращает задачу в очередь для повторной обработки.
	Nack(ctx context.Context, job FeedbackJob) error
}
