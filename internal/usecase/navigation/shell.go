package navigation

import (
	"sync"

	"citizen-ai/internal/domain"
	"citizen-ai/internal/infra/metrics"
	"citizen-ai/internal/usecase/chat"
	"citizen-ai/internal/usecase/feedback"
)

// Mounts создаёт локальное состояние экранов при входе на них.
type Mounts struct {
	Feedback func(n domain.Notifier) *feedback.Controller
	Chat     func() *chat.Conversation
}

// Shell хранит выбранный экран и состояние смонтированного экрана.
// Смонтирован всегда ровно один экран; уход с экрана сбрасывает его состояние.
type Shell struct {
	mounts Mounts

	mu       sync.Mutex
	active   domain.View
	feedback *feedback.Controller
	chat     *chat.Conversation
	closed   bool

	toastMu sync.Mutex
	toasts  []domain.Notification
}

var _ domain.Notifier = (*Shell)(nil)

// NewShell создаёт оболочку с главным экраном.
func NewShell(mounts Mounts) *Shell {
	return &Shell{mounts: mounts, active: domain.ViewHome}
}

// Active возвращает выбранный экран.
func (s *Shell) Active() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// IsRendered сообщает, отображается ли экран.
func (s *Shell) IsRendered(v domain.View) bool {
	return s.Active() == v
}

// Navigate переключает экран. Переход возможен из любого экрана в любой.
// После Close оболочка больше не переключается.
func (s *Shell) Navigate(v domain.View) {
	s.mu.Lock()
	if v == s.active || s.closed {
		s.mu.Unlock()
		return
	}
	s.unmountLocked()
	s.active = v
	s.mountLocked()
	s.mu.Unlock()
	metrics.IncNavigation(string(v))
}

// Feedback возвращает форму, если открыт экран обратной связи.
func (s *Shell) Feedback() (*feedback.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != domain.ViewFeedback {
		return nil, false
	}
	if s.feedback == nil {
		s.mountLocked()
	}
	return s.feedback, s.feedback != nil
}

// Chat возвращает диалог, если открыт экран ассистента.
func (s *Shell) Chat() (*chat.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != domain.ViewChat {
		return nil, false
	}
	if s.chat == nil {
		s.mountLocked()
	}
	return s.chat, s.chat != nil
}

// Close размонтирует текущий экран. Закрытая оболочка не монтирует экраны заново.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.unmountLocked()
}

// Notify добавляет всплывающее уведомление.
func (s *Shell) Notify(n domain.Notification) {
	s.toastMu.Lock()
	defer s.toastMu.Unlock()
	s.toasts = append(s.toasts, n)
}

// TakeNotifications возвращает накопленные уведомления и очищает очередь.
func (s *Shell) TakeNotifications() []domain.Notification {
	s.toastMu.Lock()
	defer s.toastMu.Unlock()
	out := s.toasts
	s.toasts = nil
	return out
}

func (s *Shell) mountLocked() {
	if s.closed {
		return
	}
	switch s.active {
	case domain.ViewFeedback:
		if s.mounts.Feedback != nil {
			s.feedback = s.mounts.Feedback(s)
		}
	case domain.ViewChat:
		if s.mounts.Chat != nil {
			s.chat = s.mounts.Chat()
		}
	}
}

func (s *Shell) unmountLocked() {
	if s.feedback != nil {
		s.feedback.Close()
		s.feedback = nil
	}
	s.chat = nil
}
