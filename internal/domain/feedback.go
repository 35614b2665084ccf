package domain

import (
	"errors"
	"strings"
)

// ErrUnknownField возвращается для поля, которого нет в форме обратной связи.
var ErrUnknownField = errors.New("unknown feedback field")

// Category описывает категорию городской услуги.
type Category string

const (
	CategoryWaste      Category = "waste"
	CategoryTransport  Category = "transport"
	CategoryUtilities  Category = "utilities"
	CategoryPermits    Category = "permits"
	CategoryTaxes      Category = "taxes"
	CategoryHealthcare Category = "healthcare"
	CategorySafety     Category = "safety"
	CategoryOther      Category = "other"
)

// Categories перечисляет категории в порядке отображения в форме.
var Categories = []Category{
	CategoryWaste,
	CategoryTransport,
	CategoryUtilities,
	CategoryPermits,
	CategoryTaxes,
	CategoryHealthcare,
	CategorySafety,
	CategoryOther,
}

var categoryTitles = map[Category]string{
	CategoryWaste:      "Waste Management",
	CategoryTransport:  "Public Transportation",
	CategoryUtilities:  "Utilities",
	CategoryPermits:    "Permits & Licensing",
	CategoryTaxes:      "Taxes & Finance",
	CategoryHealthcare: "Public Health",
	CategorySafety:     "Public Safety",
	CategoryOther:      "Other",
}

// Title возвращает подпись категории для выпадающего списка.
func (c Category) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return string(c)
}

// Field называет поле формы обратной связи.
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldCategory Field = "category"
	FieldSubject  Field = "subject"
	FieldMessage  Field = "message"
)

// Fields перечисляет поля формы в порядке отображения.
var Fields = []Field{FieldName, FieldEmail, FieldCategory, FieldSubject, FieldMessage}

// ParseField приводит имя поля из запроса к Field.
func ParseField(raw string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", ErrUnknownField
}

// FeedbackSubmission содержит поля, которые заполняет житель.
type FeedbackSubmission struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Category Category `json:"category" validate:"required,oneof=waste transport utilities permits taxes healthcare safety other"`
	Subject  string   `json:"subject" validate:"required"`
	Message  string   `json:"message" validate:"required"`
}

// With возвращает копию с заменённым значением поля.
func (s FeedbackSubmission) With(f Field, value string) (FeedbackSubmission, error) {
	switch f {
	case FieldName:
		s.Name = value
	case FieldEmail:
		s.Email = value
	case FieldCategory:
		s.Category = Category(value)
	case FieldSubject:
		s.Subject = value
	case FieldMessage:
		s.Message = value
	default:
		return s, ErrUnknownField
	}
	return s, nil
}
