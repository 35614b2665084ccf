package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"citizen-ai/internal/domain"
	"citizen-ai/internal/usecase/navigation"
	"citizen-ai/internal/usecase/session"
)

// SessionCookie: имя cookie с идентификатором сессии.
const SessionCookie = "citizen_session"

var errViewNotMounted = errors.New("view is not active")

type shellKey struct{}

// Handler обслуживает экраны Citizen AI и JSON API.
type Handler struct {
	sessions   *session.Registry
	classifier domain.SentimentClassifier
	pages      *pages
	cookieTTL  time.Duration
	log        zerolog.Logger
}

// NewHandler создаёт обработчик и разбирает шаблоны.
func NewHandler(sessions *session.Registry, classifier domain.SentimentClassifier, cookieTTL time.Duration, logger zerolog.Logger) (*Handler, error) {
	p, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{
		sessions:   sessions,
		classifier: classifier,
		pages:      p,
		cookieTTL:  cookieTTL,
		log:        logger,
	}, nil
}

// Register подключает маршруты к роутеру.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(s chi.Router) {
		s.Use(h.withSession)

		s.Get("/", h.index)
		s.Get("/view/{view}", h.view)
		s.Post("/feedback/field", h.editField)
		s.Post("/feedback/submit", h.submitFeedback)
		s.Post("/feedback/reset", h.resetFeedback)
		s.Post("/chat/send", h.sendChat)

		s.Get("/api/v1/session", h.apiSession)
		s.Post("/api/v1/navigate", h.apiNavigate)
		s.Post("/api/v1/sentiment", h.apiSentiment)
		s.Get("/api/v1/dashboard", h.apiDashboard)
	})
}

// withSession находит оболочку посетителя по cookie или открывает новую сессию.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var current string
		if c, err := r.Cookie(SessionCookie); err == nil {
			current = c.Value
		}
		id, shell := h.sessions.Acquire(current)
		if id != current || h.cookieTTL > 0 {
			cookie := &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			}
			if h.cookieTTL > 0 {
				cookie.MaxAge = int(h.cookieTTL.Seconds())
			}
			http.SetCookie(w, cookie)
		}
		ctx := context.WithValue(r.Context(), shellKey{}, shell)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func shellFrom(r *http.Request) *navigation.Shell {
	shell, _ := r.Context().Value(shellKey{}).(*navigation.Shell)
	return shell
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	shell := shellFrom(r)
	http.Redirect(w, r, "/view/"+string(shell.Active()), http.StatusSeeOther)
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	v, err := domain.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		h.fail(w, r, http.StatusNotFound, err)
		return
	}
	shell := shellFrom(r)
	shell.Navigate(v)
	h.render(w, r, shell, http.StatusOK, nil)
}
