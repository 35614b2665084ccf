package domain

import (
	"errors"
	"strings"
)

// ErrUnknownView возвращается для неизвестного экрана.
var ErrUnknownView = errors.New("unknown view")

// View: экран верхнего уровня, выбранный в навигации.
type View string

const (
	ViewHome      View = "home"
	ViewChat      View = "chat"
	ViewFeedback  View = "feedback"
	ViewDashboard View = "dashboard"
)

// Views перечисляет экраны в порядке пунктов навигации.
var Views = []View{ViewHome, ViewChat, ViewFeedback, ViewDashboard}

// ParseView приводит строку к View.
func ParseView(raw string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Views {
		if v == known {
			return v, nil
		}
	}
	return "", ErrUnknownView
}

// Label возвращает подпись пункта навигации.
func (v View) Label() string {
	switch v {
	case ViewHome:
		return "Home"
	case ViewChat:
		return "AI Assistant"
	case ViewFeedback:
		return "Feedback"
	case ViewDashboard:
		return "Dashboard"
	}
	return string(v)
}
