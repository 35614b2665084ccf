package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"citizen-ai/internal/domain"
)

// ErrEmptyMessage возвращается для пустого вопроса.
var ErrEmptyMessage = errors.New("chat message is empty")

// Greeting: первая реплика ассистента в новом диалоге.
const Greeting = "Hello! I'm Citizen AI, your civic assistant. Ask me about city services, permits, taxes or how to share feedback."

// Conversation хранит диалог с ассистентом, пока экран чата смонтирован.
type Conversation struct {
	assistant domain.Assistant
	fallback  domain.Assistant
	log       zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	messages []domain.ChatMessage
}

// NewConversation создаёт диалог. fallback отвечает, если основной ассистент вернул ошибку.
func NewConversation(assistant, fallback domain.Assistant, logger zerolog.Logger) *Conversation {
	c := &Conversation{assistant: assistant, fallback: fallback, log: logger, now: time.Now}
	c.messages = []domain.ChatMessage{{Role: domain.ChatRoleAssistant, Text: Greeting, At: c.now()}}
	return c
}

// Messages возвращает копию диалога.
func (c *Conversation) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.ChatMessage(nil), c.messages...)
}

// Send добавляет вопрос жителя и ответ ассистента.
func (c *Conversation) Send(ctx context.Context, text string) ([]domain.ChatMessage, error) {
	question := strings.TrimSpace(text)
	if question == "" {
		return c.Messages(), ErrEmptyMessage
	}
	c.mu.Lock()
	history := append([]domain.ChatMessage(nil), c.messages...)
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.ChatRoleCitizen, Text: question, At: c.now()})
	c.mu.Unlock()

	answer, err := c.assistant.Reply(ctx, history, question)
	if err != nil {
		if c.fallback == nil {
			return c.Messages(), err
		}
		c.log.Warn().Err(err).Msg("chat: ассистент недоступен, используем заглушку")
		answer, err = c.fallback.Reply(ctx, history, question)
		if err != nil {
			return c.Messages(), err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.ChatRoleAssistant, Text: answer, At: c.now()})
	return append([]domain.ChatMessage(nil), c.messages...), nil
}
