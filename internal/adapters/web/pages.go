package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"citizen-ai/internal/domain"
	"citizen-ai/internal/usecase/dashboard"
	"citizen-ai/internal/usecase/feedback"
	"citizen-ai/internal/usecase/navigation"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	byView map[domain.View]*template.Template
}

func parsePages() (*pages, error) {
	p := &pages{byView: make(map[domain.View]*template.Template, len(domain.Views))}
	for _, v := range domain.Views {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(v)+".html")
		if err != nil {
			return nil, fmt.Errorf("шаблон %s: %w", v, err)
		}
		p.byView[v] = t
	}
	return p, nil
}

type navItem struct {
	View   domain.View
	Label  string
	Active bool
}

type feature struct {
	View        domain.View
	Title       string
	Description string
}

type stat struct {
	Value string
	Label string
}

type homeView struct {
	Features []feature
	Stats    []stat
}

var home = homeView{
	Features: []feature{
		{View: domain.ViewChat, Title: "AI Assistant", Description: "Get instant answers about city services, permits and local regulations."},
		{View: domain.ViewFeedback, Title: "Share Feedback", Description: "Tell us about your experience. Every message is analyzed for sentiment."},
		{View: domain.ViewDashboard, Title: "Analytics Dashboard", Description: "See citizen engagement and sentiment trends across city services."},
	},
	Stats: []stat{
		{Value: "10,000+", Label: "Citizens Served"},
		{Value: "95%", Label: "Satisfaction Rate"},
		{Value: "24/7", Label: "AI Availability"},
		{Value: "2s", Label: "Avg Response Time"},
	},
}

type categoryOption struct {
	Value    domain.Category
	Title    string
	Selected bool
}

type feedbackView struct {
	Values     domain.FeedbackSubmission
	Categories []categoryOption
	Submitted  bool
	Sentiment  string
	BadgeClass string
}

func newFeedbackView(form feedback.Form) feedbackView {
	out := feedbackView{
		Values:    form.Fields,
		Submitted: form.State == feedback.StateSubmitted,
	}
	for _, c := range domain.Categories {
		out.Categories = append(out.Categories, categoryOption{Value: c, Title: c.Title(), Selected: c == form.Fields.Category})
	}
	if form.HasSentiment() {
		label := form.SentimentLabel()
		out.Sentiment = string(label)
		out.BadgeClass = label.BadgeClass()
	}
	return out
}

type page struct {
	Title       string
	Active      domain.View
	Nav         []navItem
	Toasts      []domain.Notification
	Error       string
	ErrorFields map[string]bool

	Home      homeView
	Chat      []domain.ChatMessage
	Feedback  feedbackView
	Dashboard dashboard.View
}

func buildPage(shell *navigation.Shell) *page {
	active := shell.Active()
	p := &page{
		Title:       active.Label(),
		Active:      active,
		Toasts:      shell.TakeNotifications(),
		ErrorFields: map[string]bool{},
	}
	for _, v := range domain.Views {
		p.Nav = append(p.Nav, navItem{View: v, Label: v.Label(), Active: v == active})
	}
	switch active {
	case domain.ViewHome:
		p.Home = home
	case domain.ViewChat:
		if conv, ok := shell.Chat(); ok {
			p.Chat = conv.Messages()
		}
	case domain.ViewFeedback:
		if form, ok := shell.Feedback(); ok {
			p.Feedback = newFeedbackView(form.Form())
		}
	case domain.ViewDashboard:
		p.Dashboard = dashboard.Build(dashboard.Data())
	}
	return p
}

// render отрисовывает активный экран оболочки.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, shell *navigation.Shell, status int, decorate func(*page)) {
	p := buildPage(shell)
	if decorate != nil {
		decorate(p)
	}
	t, ok := h.pages.byView[p.Active]
	if !ok {
		http.Error(w, domain.ErrUnknownView.Error(), http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.log.Error().Err(err).Str("view", string(p.Active)).Msg("web: ошибка шаблона")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
