package domain

import (
	"context"
	"time"
)

// ChatRole описывает автора реплики.
type ChatRole string

const (
	ChatRoleCitizen   ChatRole = "citizen"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage: реплика в диалоге с ассистентом.
type ChatMessage struct {
	Role ChatRole  `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Assistant отвечает на вопросы жителей.
type Assistant interface {
	Reply(ctx context.Context, history []ChatMessage, question string) (string, error)
}
