package feedback

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"citizen-ai/internal/adapters/sentiment"
	"citizen-ai/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type chanSink struct {
	jobs chan domain.FeedbackJob
	err  error
}

func newChanSink() *chanSink {
	return &chanSink{jobs: make(chan domain.FeedbackJob, 4)}
}

func (s *chanSink) Publish(_ context.Context, job domain.FeedbackJob) error {
	s.jobs <- job
	return s.err
}

func newTestController(delay time.Duration) (*Controller, *recordingNotifier, *chanSink) {
	n := &recordingNotifier{}
	sink := newChanSink()
	c := NewController(sentiment.NewKeyword(), n, sink, delay, zerolog.New(io.Discard))
	return c, n, sink
}

func fill(t *testing.T, c *Controller) {
	t.Helper()
	values := map[domain.Field]string{
		domain.FieldName:     "Ada Lovelace",
		domain.FieldEmail:    "ada@example.org",
		domain.FieldCategory: string(domain.CategoryTransport),
		domain.FieldSubject:  "Bus 12",
		domain.FieldMessage:  "The service was terrible and delayed",
	}
	for _, f := range domain.Fields {
		if _, err := c.Edit(f, values[f]); err != nil {
			t.Fatalf("не ожидали ошибку при заполнении %s: %v", f, err)
		}
	}
}

func TestInitialFormIsEmpty(t *testing.T) {
	c, _, _ := newTestController(time.Millisecond)
	form := c.Form()
	if form.State != StateEditing {
		t.Fatalf("ожидали editing, получили %v", form.State)
	}
	if form.Fields != (domain.FeedbackSubmission{}) || form.HasSentiment() {
		t.Fatalf("ожидали пустую форму, получили %+v", form)
	}
}

func TestSentimentThreshold(t *testing.T) {
	c, _, _ := newTestController(time.Millisecond)

	form, err := c.Edit(domain.FieldMessage, "terrible")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if form.HasSentiment() {
		t.Fatalf("тональность не должна определяться для сообщения короче порога")
	}

	form, _ = c.Edit(domain.FieldMessage, "0123456789")
	if form.HasSentiment() {
		t.Fatalf("ровно 10 символов не превышают порог")
	}

	form, _ = c.Edit(domain.FieldMessage, "Great job, very helpful staff")
	if form.SentimentLabel() != domain.SentimentPositive {
		t.Fatalf("ожидали Positive, получили %q", form.SentimentLabel())
	}

	form, _ = c.Edit(domain.FieldMessage, "bad")
	if form.SentimentLabel() != domain.SentimentPositive {
		t.Fatalf("сокращение сообщения не должно сбрасывать тональность, получили %q", form.SentimentLabel())
	}
}

func TestSentimentThresholdCountsRunes(t *testing.T) {
	c, _, _ := newTestController(time.Millisecond)

	form, _ := c.Edit(domain.FieldMessage, "😀😀😀😀😀😀")
	if form.HasSentiment() {
		t.Fatalf("шесть эмодзи считаются шестью символами и не превышают порог")
	}

	form, _ = c.Edit(domain.FieldMessage, "Привет мир")
	if form.HasSentiment() {
		t.Fatalf("десять кириллических символов не превышают порог, хотя занимают 19 байт")
	}

	form, _ = c.Edit(domain.FieldMessage, "Привет, мир")
	if form.SentimentLabel() != domain.SentimentNeutral {
		t.Fatalf("ожидали Neutral для одиннадцати символов, получили %q", form.SentimentLabel())
	}
}

func TestEditIsReplaceOnWrite(t *testing.T) {
	c, _, _ := newTestController(time.Millisecond)
	before, _ := c.Edit(domain.FieldMessage, "The service was terrible and delayed")
	after, _ := c.Edit(domain.FieldMessage, "Great job, very helpful staff")
	if before.SentimentLabel() != domain.SentimentNegative {
		t.Fatalf("старый снимок изменился: %q", before.SentimentLabel())
	}
	if before.Fields.Message == after.Fields.Message {
		t.Fatalf("ожидали разные снимки")
	}
}

func TestEditUnknownField(t *testing.T) {
	c, _, _ := newTestController(time.Millisecond)
	if _, err := c.Edit(domain.Field("phone"), "1"); !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("ожидали ErrUnknownField, получили %v", err)
	}
}

func TestSubmitIncompleteKeepsEditing(t *testing.T) {
	c, n, _ := newTestController(time.Millisecond)
	_, _ = c.Edit(domain.FieldName, "Ada")
	_, err := c.Submit()
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("ожидали ErrIncomplete, получили %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ожидали ValidationError, получили %T", err)
	}
	if len(verr.Missing) != 4 {
		t.Fatalf("ожидали 4 пустых поля, получили %v", verr.Missing)
	}
	if c.Form().State != StateEditing {
		t.Fatalf("форма должна остаться в режиме редактирования")
	}
	if n.count() != 0 {
		t.Fatalf("уведомление не ожидалось")
	}
}

func TestSubmitRejectsInvalidEmailAndCategory(t *testing.T) {
	c, _, _ := newTestController(time.Millisecond)
	fill(t, c)
	_, _ = c.Edit(domain.FieldEmail, "not-an-email")
	_, _ = c.Edit(domain.FieldCategory, "parks")
	_, err := c.Submit()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ожидали ValidationError, получили %v", err)
	}
	if len(verr.Invalid) != 2 || verr.Invalid[0] != domain.FieldEmail || verr.Invalid[1] != domain.FieldCategory {
		t.Fatalf("неожиданные некорректные поля: %v", verr.Invalid)
	}
}

func TestSubmitFlow(t *testing.T) {
	c, n, sink := newTestController(10 * time.Millisecond)
	fill(t, c)

	p, err := c.Submit()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if c.Form().State != StateSubmitting {
		t.Fatalf("ожидали submitting сразу после отправки")
	}
	if _, err := c.Edit(domain.FieldName, "x"); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("ожидали ErrNotEditing во время отправки, получили %v", err)
	}

	form, err := p.Wait(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if form.State != StateSubmitted {
		t.Fatalf("ожидали submitted, получили %v", form.State)
	}
	if form.SentimentLabel() != domain.SentimentNegative {
		t.Fatalf("ожидали Negative, получили %q", form.SentimentLabel())
	}
	if n.count() != 1 || n.sent[0] != SubmittedNotification {
		t.Fatalf("ожидали одно уведомление об отправке, получили %+v", n.sent)
	}

	select {
	case job := <-sink.jobs:
		if job.ID == "" || job.Submission.Subject != "Bus 12" || job.Sentiment != domain.SentimentNegative {
			t.Fatalf("неожиданная задача: %+v", job)
		}
	case <-time.After(time.Second):
		t.Fatalf("отзыв не попал в sink")
	}

	if _, err := c.Submit(); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("повторная отправка должна быть запрещена, получили %v", err)
	}
}

func TestSinkErrorDoesNotFailSubmission(t *testing.T) {
	c, _, sink := newTestController(time.Millisecond)
	sink.err = errors.New("queue down")
	fill(t, c)
	p, err := c.Submit()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	form, err := p.Wait(context.Background())
	if err != nil || form.State != StateSubmitted {
		t.Fatalf("отправка должна завершиться успешно, получили %v, %v", form.State, err)
	}
	<-sink.jobs
}

func TestResetAfterSubmit(t *testing.T) {
	c, _, sink := newTestController(time.Millisecond)
	fill(t, c)
	p, _ := c.Submit()
	if _, err := p.Wait(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	<-sink.jobs

	form := c.Reset()
	if form.State != StateEditing {
		t.Fatalf("ожидали editing после сброса")
	}
	if form.Fields != (domain.FeedbackSubmission{}) {
		t.Fatalf("ожидали пустые поля, получили %+v", form.Fields)
	}
	if form.HasSentiment() {
		t.Fatalf("тональность должна быть сброшена")
	}
}

func TestCancelPendingReturnsToEditing(t *testing.T) {
	c, n, sink := newTestController(time.Hour)
	fill(t, c)
	p, _ := c.Submit()
	p.Cancel()

	if _, err := p.Wait(context.Background()); !errors.Is(err, ErrCanceled) {
		t.Fatalf("ожидали ErrCanceled, получили %v", err)
	}
	form := c.Form()
	if form.State != StateEditing || form.Fields.Name != "Ada Lovelace" {
		t.Fatalf("ожидали редактирование с сохранёнными полями, получили %+v", form)
	}
	if n.count() != 0 || len(sink.jobs) != 0 {
		t.Fatalf("отменённая отправка не должна иметь побочных эффектов")
	}
}

func TestResetDuringSubmitCancels(t *testing.T) {
	c, n, _ := newTestController(time.Hour)
	fill(t, c)
	p, _ := c.Submit()
	form := c.Reset()
	if form.State != StateEditing || form.Fields.Name != "" {
		t.Fatalf("ожидали пустую форму, получили %+v", form)
	}
	if _, err := p.Wait(context.Background()); !errors.Is(err, ErrCanceled) {
		t.Fatalf("ожидали ErrCanceled, получили %v", err)
	}
	if n.count() != 0 {
		t.Fatalf("уведомление не ожидалось")
	}
}

func TestCloseDuringSubmitNeverCompletes(t *testing.T) {
	c, n, sink := newTestController(20 * time.Millisecond)
	fill(t, c)
	p, _ := c.Submit()
	c.Close()

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatalf("ожидание не завершилось после закрытия")
	}
	if _, err := p.Wait(context.Background()); !errors.Is(err, ErrCanceled) {
		t.Fatalf("ожидали ErrCanceled, получили %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if c.Form().State != StateSubmitting {
		t.Fatalf("закрытая форма не должна меняться, получили %v", c.Form().State)
	}
	if n.count() != 0 || len(sink.jobs) != 0 {
		t.Fatalf("закрытая форма не должна уведомлять и публиковать")
	}
	if _, err := c.Edit(domain.FieldName, "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("ожидали ErrClosed, получили %v", err)
	}
}

func TestWaitRespectsContext(t *testing.T) {
	c, _, _ := newTestController(time.Hour)
	fill(t, c)
	p, _ := c.Submit()
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ожидали DeadlineExceeded, получили %v", err)
	}
}
