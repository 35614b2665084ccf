package web

import (
	"net/http"

	httpinfra "citizen-ai/internal/infra/http"
)

// sendChat передаёт вопрос ассистенту и возвращает обновлённый диалог.
func (h *Handler) sendChat(w http.ResponseWriter, r *http.Request) {
	shell := shellFrom(r)
	conv, ok := shell.Chat()
	if !ok {
		h.fail(w, r, http.StatusConflict, errViewNotMounted)
		return
	}
	messages, err := conv.Send(r.Context(), r.FormValue("text"))
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}
	if httpinfra.WantsJSON(r) {
		httpinfra.WriteJSON(w, http.StatusOK, map[string]any{"messages": messages})
		return
	}
	h.render(w, r, shell, http.StatusOK, nil)
}
