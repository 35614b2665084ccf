package archive

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"citizen-ai/internal/domain"
)

type memoryArchive struct {
	mu    sync.Mutex
	saved map[string]domain.FeedbackJob
	err   error
}

func (a *memoryArchive) SaveFeedback(_ context.Context, job domain.FeedbackJob) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return false, a.err
	}
	if _, ok := a.saved[job.ID]; ok {
		return false, nil
	}
	a.saved[job.ID] = job
	return true, nil
}

type memoryCache struct {
	keys map[string]bool
}

func (c *memoryCache) Once(_ context.Context, key string, _ time.Duration, fn func() error) (bool, error) {
	if c.keys[key] {
		return false, nil
	}
	c.keys[key] = true
	if err := fn(); err != nil {
		delete(c.keys, key)
		return true, err
	}
	return true, nil
}

type recordedMetrics struct {
	mu     sync.Mutex
	events []string
}

func (r *recordedMetrics) RecordBusinessMetric(_ context.Context, m domain.BusinessMetric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, m.Event)
	return nil
}

func (r *recordedMetrics) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// flakyArchive падает заданное число раз, затем сохраняет как memoryArchive.
type flakyArchive struct {
	memoryArchive
	failures int
}

func (a *flakyArchive) SaveFeedback(ctx context.Context, job domain.FeedbackJob) (bool, error) {
	a.mu.Lock()
	if a.failures > 0 {
		a.failures--
		a.mu.Unlock()
		return false, errors.New("connection reset")
	}
	a.mu.Unlock()
	return a.memoryArchive.SaveFeedback(ctx, job)
}

func (a *flakyArchive) Saved(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.saved[id]
	return ok
}

type sliceQueue struct {
	jobs chan domain.FeedbackJob

	mu     sync.Mutex
	acked  []string
	nacked []string
}

func (q *sliceQueue) Publish(_ context.Context, job domain.FeedbackJob) error {
	q.jobs <- job
	return nil
}

func (q *sliceQueue) Pop(ctx context.Context) (domain.FeedbackJob, error) {
	select {
	case <-ctx.Done():
		return domain.FeedbackJob{}, ctx.Err()
	case job := <-q.jobs:
		return job, nil
	}
}

func (q *sliceQueue) Ack(_ context.Context, job domain.FeedbackJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, job.ID)
	return nil
}

func (q *sliceQueue) Nack(_ context.Context, job domain.FeedbackJob) error {
	q.mu.Lock()
	q.nacked = append(q.nacked, job.ID)
	q.mu.Unlock()
	q.jobs <- job
	return nil
}

func (q *sliceQueue) Acked() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.acked...)
}

func (q *sliceQueue) Nacked() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.nacked...)
}

func job(id string) domain.FeedbackJob {
	return domain.FeedbackJob{
		ID:         id,
		Submission: domain.FeedbackSubmission{Category: domain.CategoryWaste, Message: "Garbage collection was delayed again this week"},
		Sentiment:  domain.SentimentNegative,
	}
}

func TestHandleArchivesOnce(t *testing.T) {
	store := &memoryArchive{saved: map[string]domain.FeedbackJob{}}
	events := &recordedMetrics{}
	w := NewWorker(nil, &memoryCache{keys: map[string]bool{}}, store, events, time.Hour, zerolog.New(io.Discard))

	for i := 0; i < 2; i++ {
		if err := w.Handle(context.Background(), job("job-1")); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
	}
	if len(store.saved) != 1 {
		t.Fatalf("ожидали одну запись, получили %d", len(store.saved))
	}
	got := events.Events()
	want := []string{domain.BusinessMetricEventFeedbackArchived, domain.BusinessMetricEventFeedbackDuplicate}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ожидали события %v, получили %v", want, got)
	}
}

func TestHandleWithoutCacheReliesOnArchive(t *testing.T) {
	store := &memoryArchive{saved: map[string]domain.FeedbackJob{"job-1": job("job-1")}}
	events := &recordedMetrics{}
	w := NewWorker(nil, nil, store, events, time.Hour, zerolog.New(io.Discard))
	if err := w.Handle(context.Background(), job("job-1")); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got := events.Events(); len(got) != 1 || got[0] != domain.BusinessMetricEventFeedbackDuplicate {
		t.Fatalf("ожидали событие дубликата, получили %v", got)
	}
}

func TestHandleErrors(t *testing.T) {
	boom := errors.New("boom")
	cache := &memoryCache{keys: map[string]bool{}}
	w := NewWorker(nil, cache, &memoryArchive{err: boom}, nil, time.Hour, zerolog.New(io.Discard))
	if err := w.Handle(context.Background(), job("job-1")); !errors.Is(err, boom) {
		t.Fatalf("ожидали ошибку архива, получили %v", err)
	}
	if cache.keys["job-1"] {
		t.Fatalf("после ошибки задача должна обрабатываться повторно")
	}
	if err := w.Handle(context.Background(), domain.FeedbackJob{}); !errors.Is(err, ErrNoJobID) {
		t.Fatalf("ожидали ErrNoJobID, получили %v", err)
	}
}

func TestRunConsumesUntilCanceled(t *testing.T) {
	q := &sliceQueue{jobs: make(chan domain.FeedbackJob, 2)}
	store := &memoryArchive{saved: map[string]domain.FeedbackJob{}}
	events := &recordedMetrics{}
	w := NewWorker(q, nil, store, events, time.Hour, zerolog.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	_ = q.Publish(ctx, job("a"))
	_ = q.Publish(ctx, job("b"))
	deadline := time.After(time.Second)
	for len(events.Events()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("задачи не обработаны")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.saved) != 2 {
		t.Fatalf("ожидали две записи, получили %d", len(store.saved))
	}
}

func TestRunRequeuesOnArchiveError(t *testing.T) {
	q := &sliceQueue{jobs: make(chan domain.FeedbackJob, 2)}
	store := &flakyArchive{memoryArchive: memoryArchive{saved: map[string]domain.FeedbackJob{}}, failures: 1}
	w := NewWorker(q, &memoryCache{keys: map[string]bool{}}, store, nil, time.Hour, zerolog.New(io.Discard))
	w.retry = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	_ = q.Publish(ctx, job("a"))
	deadline := time.After(time.Second)
	for len(q.Acked()) == 0 {
		select {
		case <-deadline:
			t.Fatalf("задача не сохранена после временной ошибки")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !store.Saved("a") {
		t.Fatalf("ожидали сохранённую задачу a")
	}
	if got := q.Nacked(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("ожидали один возврат задачи a, получили %v", got)
	}
	if got := q.Acked(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("ожидали одно подтверждение задачи a, получили %v", got)
	}
}

func TestRunDropsJobWithoutID(t *testing.T) {
	q := &sliceQueue{jobs: make(chan domain.FeedbackJob, 1)}
	w := NewWorker(q, nil, &memoryArchive{saved: map[string]domain.FeedbackJob{}}, nil, time.Hour, zerolog.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	_ = q.Publish(ctx, domain.FeedbackJob{})
	deadline := time.After(time.Second)
	for len(q.Acked()) == 0 {
		select {
		case <-deadline:
			t.Fatalf("задача без идентификатора не подтверждена")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
	if got := q.Nacked(); len(got) != 0 {
		t.Fatalf("задача без идентификатора не должна возвращаться в очередь: %v", got)
	}
}
