package domain

import (
	"context"
	"time"
)

// FeedbackArchive сохраняет отзывы.
type FeedbackArchive interface {
	// SaveFeedback сохраняет отзыв и возвращает false, если задача уже была сохранена.
	SaveFeedback(ctx context.Context, job FeedbackJob) (bool, error)
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	// Once выполняет fn, если ключ ещё не задан, и сообщает, был ли вызов.
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error)
}
