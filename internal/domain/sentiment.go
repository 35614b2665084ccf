package domain

// SentimentLabel: тональность текста отзыва.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
)

// Color возвращает цвет сектора диаграммы.
func (l SentimentLabel) Color() string {
	switch l {
	case SentimentPositive:
		return "#10B981"
	case SentimentNeutral:
		return "#F59E0B"
	case SentimentNegative:
		return "#EF4444"
	}
	return "#6B7280"
}

// BadgeClass возвращает CSS-классы бейджа тональности.
func (l SentimentLabel) BadgeClass() string {
	switch l {
	case SentimentPositive:
		return "text-green-600 bg-green-50"
	case SentimentNegative:
		return "text-red-600 bg-red-50"
	case SentimentNeutral:
		return "text-yellow-600 bg-yellow-50"
	}
	return "text-gray-600 bg-gray-50"
}

// SentimentClassifier определяет тональность текста.
type SentimentClassifier interface {
	Classify(text string) SentimentLabel
}
