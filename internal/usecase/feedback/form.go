package feedback

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"citizen-ai/internal/domain"
)

// SentimentThreshold: длина сообщения, после которой определяется тональность.
const SentimentThreshold = 10

// ErrIncomplete возвращается, если форма заполнена не полностью или с ошибками.
var ErrIncomplete = errors.New("feedback form is incomplete")

// State: состояние формы.
type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Form: неизменяемый снимок формы обратной связи.
type Form struct {
	Fields    domain.FeedbackSubmission
	Sentiment *domain.SentimentLabel
	State     State
}

// HasSentiment сообщает, определена ли тональность.
func (f Form) HasSentiment() bool {
	return f.Sentiment != nil
}

// SentimentLabel возвращает метку или пустую строку.
func (f Form) SentimentLabel() domain.SentimentLabel {
	if f.Sentiment == nil {
		return ""
	}
	return *f.Sentiment
}

func (f Form) withField(field domain.Field, value string, classifier domain.SentimentClassifier) (Form, error) {
	fields, err := f.Fields.With(field, value)
	if err != nil {
		return f, err
	}
	next := f
	next.Fields = fields
	if field == domain.FieldMessage && utf8.RuneCountInString(value) > SentimentThreshold {
		label := classifier.Classify(value)
		next.Sentiment = &label
	}
	return next, nil
}

func (f Form) withState(s State) Form {
	f.State = s
	return f
}

// ValidationError перечисляет пустые и некорректные поля.
type ValidationError struct {
	Missing []domain.Field
	Invalid []domain.Field
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+joinFields(e.Missing))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+joinFields(e.Invalid))
	}
	return ErrIncomplete.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrIncomplete }

// Fields возвращает все проблемные поля.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	for _, f := range e.Missing {
		out = append(out, string(f))
	}
	for _, f := range e.Invalid {
		out = append(out, string(f))
	}
	return out
}

func joinFields(fields []domain.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate проверяет обязательность полей, формат email и категорию.
func Validate(s domain.FeedbackSubmission) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		field := domain.Field(fe.Field())
		if fe.Tag() == "required" {
			out.Missing = append(out.Missing, field)
			continue
		}
		out.Invalid = append(out.Invalid, field)
	}
	return out
}
