package assistant

import (
	"context"
	"strings"

	"citizen-ai/internal/domain"
)

type topic struct {
	keywords []string
	answer   string
}

var topics = []topic{
	{
		keywords: []string{"trash", "garbage", "waste", "recycl", "pickup"},
		answer:   "Waste collection runs weekly by district. Put bins out by 7 AM on your collection day. Missed pickups can be reported through the Feedback page under Waste Management.",
	},
	{
		keywords: []string{"bus", "transport", "route", "train", "metro", "parking"},
		answer:   "Public transportation schedules are published on the city transit portal. For route problems or delays, please share details through the Feedback page under Public Transportation.",
	},
	{
		keywords: []string{"permit", "license", "licence", "construction"},
		answer:   "Most permits can be requested online through the permit system. Processing usually takes 5 to 10 business days. You will receive an email once your application is reviewed.",
	},
	{
		keywords: []string{"tax", "deadline", "payment", "bill"},
		answer:   "Property tax payments are due twice a year. You can pay online, by mail, or in person at City Hall. Contact the finance office for installment plans.",
	},
	{
		keywords: []string{"water", "electric", "power", "utilit", "outage"},
		answer:   "For utility outages call the 24/7 utilities hotline. Billing questions are handled by the utilities office on weekdays.",
	},
	{
		keywords: []string{"health", "clinic", "vaccin", "hospital"},
		answer:   "Public health clinics are open on weekdays. Vaccination appointments can be booked online or by phone.",
	},
	{
		keywords: []string{"police", "safety", "emergency", "fire"},
		answer:   "In an emergency call 911. For non-emergency safety concerns use the public safety line or share feedback under Public Safety.",
	},
	{
		keywords: []string{"feedback", "complain", "suggest"},
		answer:   "You can share your experience on the Feedback page. Every message is analyzed for sentiment to help us improve city services.",
	},
}

const defaultAnswer = "Thanks for your question. I can help with waste collection, transportation, permits, taxes, utilities, public health and safety. Could you tell me a bit more about what you need?"

// Stub отвечает заготовленными ответами по ключевым словам.
type Stub struct{}

var _ domain.Assistant = Stub{}

// NewStub создаёт заглушку ассистента.
func NewStub() Stub {
	return Stub{}
}

// Reply возвращает ответ по первой подходящей теме.
func (Stub) Reply(_ context.Context, _ []domain.ChatMessage, question string) (string, error) {
	lower := strings.ToLower(question)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.answer, nil
			}
		}
	}
	return defaultAnswer, nil
}
