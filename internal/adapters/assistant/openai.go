package assistant

import (
	"context"
	"time"

	"citizen-ai/internal/domain"
	openai "citizen-ai/internal/infra/openai"
)

const systemPrompt = "You are Citizen AI, a helpful assistant of the city administration. Answer civic questions briefly and politely. If you are not sure, suggest contacting the relevant city office or leaving feedback."

// historyLimit ограничивает число реплик, передаваемых модели.
const historyLimit = 12

type chatClient interface {
	Complete(ctx context.Context, req openai.Request) (openai.Reply, error)
}

// OpenAI отвечает через OpenAI Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

var _ domain.Assistant = (*OpenAI)(nil)

// NewOpenAI создаёт ассистента.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

// Reply отправляет историю и вопрос модели.
func (a *OpenAI) Reply(ctx context.Context, history []domain.ChatMessage, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	messages := make([]openai.Message, 0, len(history)+2)
	messages = append(messages, openai.Message{Role: openai.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		role := openai.RoleUser
		if m.Role == domain.ChatRoleAssistant {
			role = openai.RoleAssistant
		}
		messages = append(messages, openai.Message{Role: role, Content: m.Text})
	}
	messages = append(messages, openai.Message{Role: openai.RoleUser, Content: question})

	reply, err := a.client.Complete(ctx, openai.Request{
		Model:       a.model,
		Temperature: 0.3,
		MaxTokens:   400,
		Messages:    messages,
	})
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}
