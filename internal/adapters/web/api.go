package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"citizen-ai/internal/domain"
	httpinfra "citizen-ai/internal/infra/http"
	"citizen-ai/internal/usecase/dashboard"
	"citizen-ai/internal/usecase/navigation"
)

var errBadBody = errors.New("invalid request body")

type sessionResponse struct {
	View          domain.View           `json:"view"`
	Feedback      *formResponse         `json:"feedback,omitempty"`
	Chat          []domain.ChatMessage  `json:"chat,omitempty"`
	Notifications []domain.Notification `json:"notifications,omitempty"`
}

func snapshot(shell *navigation.Shell) sessionResponse {
	resp := sessionResponse{View: shell.Active()}
	if form, ok := shell.Feedback(); ok {
		f := newFormResponse(form.Form(), nil)
		resp.Feedback = &f
	}
	if conv, ok := shell.Chat(); ok {
		resp.Chat = conv.Messages()
	}
	resp.Notifications = shell.TakeNotifications()
	return resp
}

func (h *Handler) apiSession(w http.ResponseWriter, r *http.Request) {
	httpinfra.WriteJSON(w, http.StatusOK, snapshot(shellFrom(r)))
}

type navigateRequest struct {
	View string `json:"view"`
}

func (h *Handler) apiNavigate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, errBadBody)
		return
	}
	v, err := domain.ParseView(req.View)
	if err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, err)
		return
	}
	shell := shellFrom(r)
	shell.Navigate(v)
	httpinfra.WriteJSON(w, http.StatusOK, snapshot(shell))
}

type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Label domain.SentimentLabel `json:"label"`
	Color string                `json:"color"`
}

func (h *Handler) apiSentiment(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req sentimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, errBadBody)
		return
	}
	label := h.classifier.Classify(req.Text)
	httpinfra.WriteJSON(w, http.StatusOK, sentimentResponse{Label: label, Color: label.Color()})
}

func (h *Handler) apiDashboard(w http.ResponseWriter, r *http.Request) {
	httpinfra.WriteJSON(w, http.StatusOK, dashboard.Data())
}
