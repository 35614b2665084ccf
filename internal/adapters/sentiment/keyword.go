package sentiment

import (
	"strings"

	"citizen-ai/internal/domain"
	"citizen-ai/internal/infra/metrics"
)

var (
	positiveWords = []string{"good", "great", "excellent", "amazing", "wonderful", "helpful", "satisfied", "happy"}
	negativeWords = []string{"bad", "terrible", "awful", "disappointed", "frustrated", "angry", "poor", "delayed"}
)

// Keyword определяет тональность по вхождению ключевых слов.
type Keyword struct{}

var _ domain.SentimentClassifier = Keyword{}

// NewKeyword создаёт классификатор.
func NewKeyword() Keyword {
	return Keyword{}
}

// Classify реализует domain.SentimentClassifier.
func (Keyword) Classify(text string) domain.SentimentLabel {
	label := Classify(text)
	metrics.IncSentiment(string(label))
	return label
}

// Classify сравнивает число позитивных и негативных слов, содержащихся в тексте как подстроки.
// Каждое слово списка учитывается не больше одного раза, равенство даёт Neutral.
func Classify(text string) domain.SentimentLabel {
	lower := strings.ToLower(text)
	positive := countContained(lower, positiveWords)
	negative := countContained(lower, negativeWords)
	switch {
	case positive > negative:
		return domain.SentimentPositive
	case negative > positive:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func countContained(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
