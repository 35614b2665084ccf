package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"citizen-ai/internal/domain"
	"citizen-ai/internal/infra/metrics"
)

// RedisFeedbackQueue реализует очередь отзывов на базе Redis lists.
type RedisFeedbackQueue struct {
	client redis.Cmdable
	key    string
}

var _ domain.FeedbackQueue = (*RedisFeedbackQueue)(nil)

// NewRedisFeedbackQueue создаёт очередь по указанному ключу.
func NewRedisFeedbackQueue(client redis.Cmdable, key string) *RedisFeedbackQueue {
	return &RedisFeedbackQueue{client: client, key: key}
}

// Publish публикует отзыв в очередь.
func (q *RedisFeedbackQueue) Publish(ctx context.Context, job domain.FeedbackJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.client.LPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "lpush", q.key, start, err)
	if err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Pop блокирующе читает отзыв из очереди. Задача удаляется из списка сразу, вернуть её можно через Nack.
func (q *RedisFeedbackQueue) Pop(ctx context.Context) (domain.FeedbackJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.FeedbackJob{}, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.FeedbackJob{}, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.FeedbackJob{}, err
		}
		if len(res) != 2 {
			return domain.FeedbackJob{}, errors.New("redis queue: unexpected response")
		}
		var job domain.FeedbackJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.FeedbackJob{}, fmt.Errorf("decode job: %w", err)
		}
		return job, nil
	}
}

// Ack ничего не делает: BRPOP уже удалил задачу из списка.
func (q *RedisFeedbackQueue) Ack(context.Context, domain.FeedbackJob) error {
	return nil
}

// Nack кладёт задачу обратно в хвост списка, откуда её заберёт следующий Pop.
func (q *RedisFeedbackQueue) Nack(ctx context.Context, job domain.FeedbackJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.client.RPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "rpush", q.key, start, err)
	if err != nil {
		return fmt.Errorf("requeue job: %w", err)
	}
	return nil
}
