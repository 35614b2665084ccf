package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"citizen-ai/internal/domain"
	"citizen-ai/internal/infra/metrics"
)

// ErrQueueClosed возвращается, если соединение с брокером закрыто.
var ErrQueueClosed = errors.New("rabbitmq: queue closed")

// ErrUnknownDelivery возвращается при Ack/Nack задачи, которую не выдавал Pop.
var ErrUnknownDelivery = errors.New("rabbitmq: unknown delivery")

// RabbitFeedbackQueue реализует очередь отзывов через AMQP 0-9-1.
type RabbitFeedbackQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string

	mu         sync.Mutex
	deliveries <-chan amqp.Delivery

	pendingMu sync.Mutex
	pending   map[string]amqp.Delivery
}

var _ domain.FeedbackQueue = (*RabbitFeedbackQueue)(nil)

// NewRabbitFeedbackQueue подключается к брокеру и объявляет durable-очередь.
func NewRabbitFeedbackQueue(amqpURL, queue string) (*RabbitFeedbackQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &RabbitFeedbackQueue{conn: conn, ch: ch, queue: queue, pending: map[string]amqp.Delivery{}}, nil
}

// Publish публикует отзыв в очередь.
func (q *RabbitFeedbackQueue) Publish(ctx context.Context, job domain.FeedbackJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	q.mu.Lock()
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.SubmittedAt,
		Body:         payload,
	})
	q.mu.Unlock()
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Pop блокирующе читает отзыв из очереди. Доставка остаётся неподтверждённой до Ack или Nack.
func (q *RabbitFeedbackQueue) Pop(ctx context.Context) (domain.FeedbackJob, error) {
	deliveries, err := q.consume()
	if err != nil {
		return domain.FeedbackJob{}, err
	}
	select {
	case <-ctx.Done():
		return domain.FeedbackJob{}, ctx.Err()
	case d, ok := <-deliveries:
		if !ok {
			return domain.FeedbackJob{}, ErrQueueClosed
		}
		var job domain.FeedbackJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			_ = d.Nack(false, false)
			return domain.FeedbackJob{}, fmt.Errorf("decode job: %w", err)
		}
		q.pendingMu.Lock()
		q.pending[job.ID] = d
		q.pendingMu.Unlock()
		return job, nil
	}
}

// Ack подтверждает доставку задачи брокеру.
func (q *RabbitFeedbackQueue) Ack(_ context.Context, job domain.FeedbackJob) error {
	d, ok := q.take(job.ID)
	if !ok {
		return ErrUnknownDelivery
	}
	if err := d.Ack(false); err != nil {
		return fmt.Errorf("ack job: %w", err)
	}
	return nil
}

// Nack возвращает доставку в очередь брокера.
func (q *RabbitFeedbackQueue) Nack(_ context.Context, job domain.FeedbackJob) error {
	d, ok := q.take(job.ID)
	if !ok {
		return ErrUnknownDelivery
	}
	if err := d.Nack(false, true); err != nil {
		return fmt.Errorf("nack job: %w", err)
	}
	return nil
}

func (q *RabbitFeedbackQueue) take(id string) (amqp.Delivery, bool) {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()
	d, ok := q.pending[id]
	delete(q.pending, id)
	return d, ok
}

func (q *RabbitFeedbackQueue) consume() (<-chan amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deliveries != nil {
		return q.deliveries, nil
	}
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}
	q.deliveries = deliveries
	return deliveries, nil
}

// Close закрывает канал и соединение.
func (q *RabbitFeedbackQueue) Close() error {
	_ = q.ch.Close()
	return q.conn.Close()
}
