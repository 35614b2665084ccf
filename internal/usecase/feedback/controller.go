package feedback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"citizen-ai/internal/domain"
	"citizen-ai/internal/infra/metrics"
)

var (
	// ErrNotEditing возвращается при изменении формы вне режима редактирования.
	ErrNotEditing = errors.New("feedback form is not editable")
	// ErrClosed возвращается после размонтирования формы.
	ErrClosed = errors.New("feedback form is closed")
	// ErrCanceled возвращается ожидающим отправки, если она была отменена.
	ErrCanceled = errors.New("feedback submission canceled")
)

// SubmittedNotification показывается после успешной отправки.
var SubmittedNotification = domain.Notification{
	Title:       "Feedback Submitted Successfully!",
	Description: "Thank you for your input. We'll review your feedback shortly.",
}

const sinkTimeout = 5 * time.Second

// Controller управляет формой обратной связи: редактирование, имитация отправки, сброс.
// Методы безопасны для конкурентного вызова.
type Controller struct {
	classifier domain.SentimentClassifier
	notifier   domain.Notifier
	sink       domain.FeedbackSink
	delay      time.Duration
	log        zerolog.Logger
	now        func() time.Time

	mu      sync.Mutex
	form    Form
	pending *Pending
	closed  bool
}

// NewController создаёт пустую форму.
func NewController(classifier domain.SentimentClassifier, notifier domain.Notifier, sink domain.FeedbackSink, delay time.Duration, logger zerolog.Logger) *Controller {
	if notifier == nil {
		notifier = domain.NotifierFunc(func(domain.Notification) {})
	}
	return &Controller{
		classifier: classifier,
		notifier:   notifier,
		sink:       sink,
		delay:      delay,
		log:        logger,
		now:        time.Now,
	}
}

// Form возвращает текущий снимок формы.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Edit заменяет значение поля. Для сообщения длиннее порога пересчитывает тональность.
func (c *Controller) Edit(field domain.Field, value string) (Form, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.form, ErrClosed
	}
	if c.form.State != StateEditing {
		return c.form, ErrNotEditing
	}
	next, err := c.form.withField(field, value, c.classifier)
	if err != nil {
		return c.form, err
	}
	c.form = next
	return next, nil
}

// Submit проверяет форму и запускает отложенное завершение отправки.
// Незаполненная форма остаётся в режиме редактирования.
func (c *Controller) Submit() (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.form.State != StateEditing {
		return nil, ErrNotEditing
	}
	if err := Validate(c.form.Fields); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pending{
		owner:  c,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.form = c.form.withState(StateSubmitting)
	c.pending = p
	go c.run(p)
	return p, nil
}

// Reset очищает все поля и тональность («отправить ещё»). Ожидающая отправка отменяется.
func (c *Controller) Reset() Form {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	if !c.closed {
		c.form = Form{}
	}
	form := c.form
	c.mu.Unlock()
	if p != nil {
		p.cancel()
	}
	return form
}

// Close размонтирует форму: ожидающая отправка отменяется и больше не изменит состояние.
func (c *Controller) Close() {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	c.closed = true
	c.mu.Unlock()
	if p != nil {
		p.cancel()
	}
}

func (c *Controller) run(p *Pending) {
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-p.ctx.Done():
		p.finish(Form{}, ErrCanceled)
		metrics.FeedbackSubmitCanceled.Inc()
		return
	case <-timer.C:
	}
	c.complete(p)
}

func (c *Controller) complete(p *Pending) {
	c.mu.Lock()
	if c.pending != p || c.closed {
		c.mu.Unlock()
		p.finish(Form{}, ErrCanceled)
		metrics.FeedbackSubmitCanceled.Inc()
		return
	}
	c.pending = nil
	c.form = c.form.withState(StateSubmitted)
	form := c.form
	c.mu.Unlock()

	metrics.IncSubmission(string(form.Fields.Category), string(form.SentimentLabel()))
	c.notifier.Notify(SubmittedNotification)
	p.finish(form, nil)
	c.publish(form)
}

func (c *Controller) abort(p *Pending) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != p {
		return
	}
	c.pending = nil
	if !c.closed {
		c.form = c.form.withState(StateEditing)
	}
}

func (c *Controller) publish(form Form) {
	if c.sink == nil {
		return
	}
	job := domain.FeedbackJob{
		ID:          uuid.NewString(),
		Submission:  form.Fields,
		Sentiment:   form.SentimentLabel(),
		SubmittedAt: c.now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := c.sink.Publish(ctx, job); err != nil {
		metrics.FeedbackSinkErrors.WithLabelValues("publish").Inc()
		c.log.Error().Err(err).Str("job_id", job.ID).Msg("feedback: не удалось передать отзыв")
	}
}

// Pending: отложенное завершение отправки, которое можно отменить.
type Pending struct {
	owner  *Controller
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	once   sync.Once
	result Form
	err    error
}

// Cancel отменяет отправку и возвращает форму в режим редактирования с сохранёнными полями.
func (p *Pending) Cancel() {
	p.owner.abort(p)
	p.cancel()
}

// Done закрывается, когда отправка завершилась или была отменена.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait блокируется до завершения отправки. Отмена ctx не отменяет саму отправку.
func (p *Pending) Wait(ctx context.Context) (Form, error) {
	select {
	case <-ctx.Done():
		return Form{}, ctx.Err()
	case <-p.done:
		return p.result, p.err
	}
}

func (p *Pending) finish(form Form, err error) {
	p.once.Do(func() {
		p.result = form
		p.err = err
		close(p.done)
	})
}
