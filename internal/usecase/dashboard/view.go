package dashboard

import (
	"fmt"
	"strings"

	"citizen-ai/internal/domain"
)

// barMaxHeight: высота самого большого столбца в процентах от области графика.
const barMaxHeight = 100

// Slice: сектор круговой диаграммы тональности.
type Slice struct {
	Label   string
	Color   string
	Percent int
	Count   int
	// Offset: накопленный процент до начала сектора.
	Offset int
}

// Bar: столбец гистограммы.
type Bar struct {
	Label  string
	Value  int
	Height int
	Hint   string
}

// DayBars: пара столбцов недельного тренда.
type DayBars struct {
	Day          string
	Interactions Bar
	Feedback     Bar
}

// FeedbackRow: строка ленты последних отзывов.
type FeedbackRow struct {
	Message    string
	Meta       string
	Sentiment  string
	BadgeClass string
}

// View: модель представления дашборда для шаблона.
type View struct {
	KPIs       []domain.KPI
	Sentiment  []Slice
	Categories []Bar
	Weekly     []DayBars
	Recent     []FeedbackRow
}

// Build формирует модель представления из наборов данных.
func Build(d Datasets) View {
	return View{
		KPIs:       d.KPIs,
		Sentiment:  buildSlices(d.Sentiment),
		Categories: buildCategoryBars(d.Categories),
		Weekly:     buildWeekly(d.Weekly),
		Recent:     buildRecent(d.Recent),
	}
}

// PieLabel формирует подпись сектора вида «Positive: 45%».
func PieLabel(s domain.SentimentShare) string {
	return fmt.Sprintf("%s: %d%%", s.Label, s.Percent)
}

func buildSlices(shares []domain.SentimentShare) []Slice {
	out := make([]Slice, 0, len(shares))
	offset := 0
	for _, s := range shares {
		out = append(out, Slice{
			Label:   PieLabel(s),
			Color:   s.Label.Color(),
			Percent: s.Percent,
			Count:   s.Count,
			Offset:  offset,
		})
		offset += s.Percent
	}
	return out
}

func buildCategoryBars(categories []domain.CategoryPerformance) []Bar {
	top := 0
	for _, c := range categories {
		if c.Count > top {
			top = c.Count
		}
	}
	out := make([]Bar, 0, len(categories))
	for _, c := range categories {
		out = append(out, Bar{
			Label:  c.Category,
			Value:  c.Count,
			Height: scale(c.Count, top),
			Hint:   fmt.Sprintf("%d feedback, %d%% satisfied", c.Count, c.Satisfaction),
		})
	}
	return out
}

func buildWeekly(days []domain.DailyActivity) []DayBars {
	top := 0
	for _, d := range days {
		if d.Interactions > top {
			top = d.Interactions
		}
		if d.Feedback > top {
			top = d.Feedback
		}
	}
	out := make([]DayBars, 0, len(days))
	for _, d := range days {
		out = append(out, DayBars{
			Day:          d.Day,
			Interactions: Bar{Label: "Interactions", Value: d.Interactions, Height: scale(d.Interactions, top)},
			Feedback:     Bar{Label: "Feedback", Value: d.Feedback, Height: scale(d.Feedback, top)},
		})
	}
	return out
}

func buildRecent(items []domain.RecentFeedback) []FeedbackRow {
	out := make([]FeedbackRow, 0, len(items))
	for _, item := range items {
		message := strings.TrimSpace(item.Message)
		if message == "" {
			continue
		}
		out = append(out, FeedbackRow{
			Message:    message,
			Meta:       item.Category + " • " + item.Time,
			Sentiment:  string(item.Sentiment),
			BadgeClass: item.Sentiment.BadgeClass(),
		})
	}
	return out
}

func scale(value, top int) int {
	if top <= 0 {
		return 0
	}
	return value * barMaxHeight / top
}
