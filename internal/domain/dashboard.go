package domain

// SentimentShare: доля тональности на круговой диаграмме.
type SentimentShare struct {
	Label   SentimentLabel `json:"name"`
	Percent int            `json:"value"`
	Count   int            `json:"count"`
}

// CategoryPerformance: число отзывов и удовлетворённость по категории.
type CategoryPerformance struct {
	Category     string `json:"category"`
	Count        int    `json:"count"`
	Satisfaction int    `json:"sentiment"`
}

// DailyActivity: обращения и отзывы за день недели.
type DailyActivity struct {
	Day          string `json:"day"`
	Interactions int    `json:"interactions"`
	Feedback     int    `json:"feedback"`
}

// RecentFeedback: отзыв из ленты последних обращений.
type RecentFeedback struct {
	ID        int            `json:"id"`
	Message   string         `json:"message"`
	Sentiment SentimentLabel `json:"sentiment"`
	Category  string         `json:"category"`
	Time      string         `json:"time"`
}

// KPI: карточка ключевого показателя.
type KPI struct {
	Title  string `json:"title"`
	Value  string `json:"value"`
	Change string `json:"change"`
}
