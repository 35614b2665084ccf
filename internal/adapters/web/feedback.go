package web

import (
	"net/http"

	"citizen-ai/internal/domain"
	httpinfra "citizen-ai/internal/infra/http"
	"citizen-ai/internal/usecase/feedback"
	"citizen-ai/internal/usecase/navigation"
)

type formResponse struct {
	State         string                    `json:"state"`
	Fields        domain.FeedbackSubmission `json:"fields"`
	Sentiment     *domain.SentimentLabel    `json:"sentiment"`
	Notifications []domain.Notification     `json:"notifications,omitempty"`
}

func newFormResponse(form feedback.Form, toasts []domain.Notification) formResponse {
	return formResponse{
		State:         form.State.String(),
		Fields:        form.Fields,
		Sentiment:     form.Sentiment,
		Notifications: toasts,
	}
}

func (h *Handler) mountedForm(w http.ResponseWriter, r *http.Request) (*navigation.Shell, *feedback.Controller, bool) {
	shell := shellFrom(r)
	form, ok := shell.Feedback()
	if !ok {
		h.fail(w, r, http.StatusConflict, errViewNotMounted)
		return nil, nil, false
	}
	return shell, form, true
}

func (h *Handler) respondForm(w http.ResponseWriter, r *http.Request, shell *navigation.Shell, form feedback.Form) {
	if httpinfra.WantsJSON(r) {
		httpinfra.WriteJSON(w, http.StatusOK, newFormResponse(form, shell.TakeNotifications()))
		return
	}
	h.render(w, r, shell, http.StatusOK, nil)
}

// editField заменяет значение одного поля формы.
func (h *Handler) editField(w http.ResponseWriter, r *http.Request) {
	shell, form, ok := h.mountedForm(w, r)
	if !ok {
		return
	}
	field, err := domain.ParseField(r.FormValue("field"))
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}
	snapshot, err := form.Edit(field, r.FormValue("value"))
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}
	h.respondForm(w, r, shell, snapshot)
}

// submitFeedback применяет присланные поля, отправляет форму и ждёт завершения.
// Обрыв запроса отменяет отправку.
func (h *Handler) submitFeedback(w http.ResponseWriter, r *http.Request) {
	shell, form, ok := h.mountedForm(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, err)
		return
	}
	for _, f := range domain.Fields {
		values, present := r.PostForm[string(f)]
		if !present || len(values) == 0 {
			continue
		}
		if _, err := form.Edit(f, values[0]); err != nil {
			h.fail(w, r, statusFor(err), err)
			return
		}
	}

	pending, err := form.Submit()
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}
	result, err := pending.Wait(r.Context())
	if err != nil {
		if r.Context().Err() != nil {
			pending.Cancel()
			h.log.Info().Str("request_id", httpinfra.RequestID(r)).Msg("web: отправка отзыва прервана клиентом")
			return
		}
		h.fail(w, r, statusFor(err), err)
		return
	}
	h.respondForm(w, r, shell, result)
}

// resetFeedback очищает форму («Submit Another Feedback»).
func (h *Handler) resetFeedback(w http.ResponseWriter, r *http.Request) {
	shell, form, ok := h.mountedForm(w, r)
	if !ok {
		return
	}
	snapshot := form.Reset()
	if httpinfra.WantsJSON(r) {
		httpinfra.WriteJSON(w, http.StatusOK, newFormResponse(snapshot, shell.TakeNotifications()))
		return
	}
	http.Redirect(w, r, "/view/feedback", http.StatusSeeOther)
}
