package dashboard

import "citizen-ai/internal/domain"

// Данные дашборда фиксированы и не зависят от принятых отзывов.
var (
	sentimentData = []domain.SentimentShare{
		{Label: domain.SentimentPositive, Percent: 45, Count: 450},
		{Label: domain.SentimentNeutral, Percent: 35, Count: 350},
		{Label: domain.SentimentNegative, Percent: 20, Count: 200},
	}

	categoryData = []domain.CategoryPerformance{
		{Category: "Waste Mgmt", Count: 120, Satisfaction: 65},
		{Category: "Transport", Count: 98, Satisfaction: 72},
		{Category: "Utilities", Count: 87, Satisfaction: 58},
		{Category: "Permits", Count: 76, Satisfaction: 81},
		{Category: "Taxes", Count: 65, Satisfaction: 45},
		{Category: "Safety", Count: 54, Satisfaction: 78},
	}

	weeklyData = []domain.DailyActivity{
		{Day: "Mon", Interactions: 45, Feedback: 12},
		{Day: "Tue", Interactions: 52, Feedback: 18},
		{Day: "Wed", Interactions: 38, Feedback: 8},
		{Day: "Thu", Interactions: 67, Feedback: 22},
		{Day: "Fri", Interactions: 59, Feedback: 15},
		{Day: "Sat", Interactions: 31, Feedback: 9},
		{Day: "Sun", Interactions: 28, Feedback: 6},
	}

	recentFeedback = []domain.RecentFeedback{
		{ID: 1, Message: "The new online permit system is much easier to use!", Sentiment: domain.SentimentPositive, Category: "Permits", Time: "2 hours ago"},
		{ID: 2, Message: "Garbage collection was delayed again this week", Sentiment: domain.SentimentNegative, Category: "Waste Management", Time: "4 hours ago"},
		{ID: 3, Message: "Bus routes are well planned in our area", Sentiment: domain.SentimentPositive, Category: "Transport", Time: "6 hours ago"},
		{ID: 4, Message: "Need better information about tax deadlines", Sentiment: domain.SentimentNeutral, Category: "Taxes", Time: "8 hours ago"},
	}

	kpis = []domain.KPI{
		{Title: "Total Interactions", Value: "1,247", Change: "+12% from last week"},
		{Title: "Active Citizens", Value: "892", Change: "+5% from last week"},
		{Title: "Positive Sentiment", Value: "45%", Change: "+3% from last week"},
		{Title: "Avg Response Time", Value: "1.8s", Change: "-0.2s from last week"},
	}
)

// Datasets: исходные наборы данных дашборда.
type Datasets struct {
	Sentiment  []domain.SentimentShare      `json:"sentiment"`
	Categories []domain.CategoryPerformance `json:"categories"`
	Weekly     []domain.DailyActivity       `json:"weekly"`
	Recent     []domain.RecentFeedback      `json:"recent_feedback"`
	KPIs       []domain.KPI                 `json:"kpis"`
}

// Data возвращает копию наборов данных.
func Data() Datasets {
	return Datasets{
		Sentiment:  append([]domain.SentimentShare(nil), sentimentData...),
		Categories: append([]domain.CategoryPerformance(nil), categoryData...),
		Weekly:     append([]domain.DailyActivity(nil), weeklyData...),
		Recent:     append([]domain.RecentFeedback(nil), recentFeedback...),
		KPIs:       append([]domain.KPI(nil), kpis...),
	}
}
