package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"citizen-ai/internal/infra/metrics"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	maxResponseBytes = 1 << 20
)

var (
	// ErrNoAPIKey возвращается, если ключ API не задан.
	ErrNoAPIKey = errors.New("openai: api key is empty")
	// ErrNoMessages возвращается для запроса без реплик.
	ErrNoMessages = errors.New("openai: no messages")
	// ErrEmptyReply возвращается, если модель не вернула текста.
	ErrEmptyReply = errors.New("openai: empty reply")
)

// Role автора реплики в диалоге.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message одна реплика диалога.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request запрос на продолжение диалога.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	User        string    `json:"user,omitempty"`
}

// Usage статистика токенов.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Reply ответ модели с обрезанными пробелами.
type Reply struct {
	Text         string
	FinishReason string
	Usage        Usage
}

// APIError ошибка, которую вернул сервер.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openai: unexpected status %d", e.Status)
	}
	return "openai: " + e.Message
}

// Temporary сообщает, имеет ли смысл повторить запрос.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// Client ходит в OpenAI-совместимый /chat/completions.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	retries  int
	backoff  time.Duration
}

// Option настраивает Client.
type Option func(*Client)

// WithRetries задаёт число повторов временных ошибок и шаг паузы между ними.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// NewClient создаёт клиента. Пустой baseURL означает api.openai.com.
func NewClient(apiKey, baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	c := &Client{
		http:     &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(baseURL, "/") + "/chat/completions",
		apiKey:   apiKey,
		retries:  1,
		backoff:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete отправляет диалог и возвращает первую реплику модели.
// 429 и 5xx повторяются с линейно растущей паузой, пока не истечёт ctx.
func (c *Client) Complete(ctx context.Context, req Request) (Reply, error) {
	if c.apiKey == "" {
		return Reply{}, ErrNoAPIKey
	}
	if len(req.Messages) == 0 {
		return Reply{}, ErrNoMessages
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("openai: marshal request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		start := time.Now()
		reply, err := c.post(ctx, body)
		metrics.ObserveNetworkRequest("openai", "chat_completions", req.Model, start, err)
		if err == nil {
			metrics.ObserveLLMGeneration(req.Model, time.Since(start), reply.Usage.PromptTokens, reply.Usage.CompletionTokens, reply.Usage.TotalTokens)
			return reply, nil
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Temporary() || attempt >= c.retries {
			return Reply{}, err
		}
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-time.After(c.backoff * time.Duration(attempt+1)):
		}
	}
}

type completionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) post(ctx context.Context, body []byte) (Reply, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("openai: do request: %w", err)
	}
	defer resp.Body.Close()

	var decoded completionResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded)
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil && decoded.Error != nil {
			apiErr.Type = decoded.Error.Type
			apiErr.Message = decoded.Error.Message
		}
		return Reply{}, apiErr
	}
	if decodeErr != nil {
		return Reply{}, fmt.Errorf("openai: decode response: %w", decodeErr)
	}
	if len(decoded.Choices) == 0 {
		return Reply{}, ErrEmptyReply
	}
	reply := Reply{
		Text:         strings.TrimSpace(decoded.Choices[0].Message.Content),
		FinishReason: decoded.Choices[0].FinishReason,
	}
	if decoded.Usage != nil {
		reply.Usage = *decoded.Usage
	}
	if reply.Text == "" {
		return Reply{}, ErrEmptyReply
	}
	return reply, nil
}
