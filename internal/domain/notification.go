package domain

// Notification: всплывающее уведомление (toast).
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notifier доставляет уведомления без подтверждения.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc позволяет использовать функцию как Notifier.
type NotifierFunc func(n Notification)

// Notify вызывает f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }
