package domain

import (
	"context"
	"time"
)

// BusinessMetric описывает бизнесовое событие, которое сохраняется для последующего анализа.
type BusinessMetric struct {
	Event      string
	Metadata   map[string]any
	OccurredAt time.Time
}

const (
	// BusinessMetricEventFeedbackArchived фиксирует сохранение отзыва в архиве.
	BusinessMetricEventFeedbackArchived = "feedback_archived"
	// BusinessMetricEventFeedbackDuplicate фиксирует повторную доставку уже сохранённого отзыва.
	BusinessMetricEventFeedbackDuplicate = "feedback_duplicate"
)

// BusinessMetricRepo сохраняет бизнесовые события.
type BusinessMetricRepo interface {
	RecordBusinessMetric(ctx context.Context, metric BusinessMetric) error
}
