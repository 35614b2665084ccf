package web

import (
	"errors"
	"net/http"

	"citizen-ai/internal/domain"
	httpinfra "citizen-ai/internal/infra/http"
	"citizen-ai/internal/usecase/chat"
	"citizen-ai/internal/usecase/feedback"
)

// statusFor сопоставляет доменные ошибки HTTP-статусам.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownView),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, feedback.ErrIncomplete),
		errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, feedback.ErrNotEditing),
		errors.Is(err, feedback.ErrClosed),
		errors.Is(err, feedback.ErrCanceled),
		errors.Is(err, errViewNotMounted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func invalidFields(err error) []string {
	var verr *feedback.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields()
	}
	return nil
}

// fail отвечает ошибкой в JSON или страницей текущего экрана.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Str("path", r.URL.Path).Msg("web: ошибка обработки запроса")
	}
	shell := shellFrom(r)
	if httpinfra.WantsJSON(r) || shell == nil {
		httpinfra.WriteError(w, status, err, invalidFields(err)...)
		return
	}
	if status == http.StatusNotFound {
		http.Error(w, err.Error(), status)
		return
	}
	h.render(w, r, shell, status, func(p *page) {
		p.Error = err.Error()
		for _, f := range invalidFields(err) {
			p.ErrorFields[f] = true
		}
	})
}
