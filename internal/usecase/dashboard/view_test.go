package dashboard

import (
	"testing"

	"citizen-ai/internal/domain"
)

func TestDataMatchesConstants(t *testing.T) {
	d := Data()
	if len(d.Sentiment) != 3 || d.Sentiment[0].Percent != 45 || d.Sentiment[1].Count != 350 || d.Sentiment[2].Label != domain.SentimentNegative {
		t.Fatalf("неожиданное распределение тональности: %+v", d.Sentiment)
	}
	if len(d.Categories) != 6 || d.Categories[0].Category != "Waste Mgmt" || d.Categories[3].Satisfaction != 81 {
		t.Fatalf("неожиданные категории: %+v", d.Categories)
	}
	if len(d.Weekly) != 7 || d.Weekly[3].Interactions != 67 || d.Weekly[6].Feedback != 6 {
		t.Fatalf("неожиданный недельный тренд: %+v", d.Weekly)
	}
	if len(d.Recent) != 4 || d.Recent[1].Category != "Waste Management" {
		t.Fatalf("неожиданные последние отзывы: %+v", d.Recent)
	}
	if len(d.KPIs) != 4 || d.KPIs[0].Value != "1,247" || d.KPIs[3].Change != "-0.2s from last week" {
		t.Fatalf("неожиданные KPI: %+v", d.KPIs)
	}
}

func TestDataReturnsCopy(t *testing.T) {
	d := Data()
	d.KPIs[0].Value = "0"
	if Data().KPIs[0].Value != "1,247" {
		t.Fatalf("изменение копии не должно влиять на исходные данные")
	}
}

func TestBuildSentimentSlices(t *testing.T) {
	v := Build(Data())
	want := []struct {
		label  string
		color  string
		offset int
	}{
		{"Positive: 45%", "#10B981", 0},
		{"Neutral: 35%", "#F59E0B", 45},
		{"Negative: 20%", "#EF4444", 80},
	}
	for i, w := range want {
		got := v.Sentiment[i]
		if got.Label != w.label || got.Color != w.color || got.Offset != w.offset {
			t.Fatalf("сектор %d: ожидали %+v, получили %+v", i, w, got)
		}
	}
}

func TestBuildBarsScaledToMax(t *testing.T) {
	v := Build(Data())
	if v.Categories[0].Height != 100 {
		t.Fatalf("максимальная категория должна иметь высоту 100, получили %d", v.Categories[0].Height)
	}
	if v.Categories[5].Height != 45 {
		t.Fatalf("ожидали 54*100/120=45, получили %d", v.Categories[5].Height)
	}
	thu := v.Weekly[3]
	if thu.Interactions.Height != 100 || thu.Feedback.Height != 22*100/67 {
		t.Fatalf("неожиданные высоты четверга: %+v", thu)
	}
}

func TestBuildRecentBadges(t *testing.T) {
	v := Build(Data())
	cases := map[int]string{
		0: "text-green-600 bg-green-50",
		1: "text-red-600 bg-red-50",
		3: "text-yellow-600 bg-yellow-50",
	}
	for i, class := range cases {
		if v.Recent[i].BadgeClass != class {
			t.Fatalf("строка %d: ожидали %q, получили %q", i, class, v.Recent[i].BadgeClass)
		}
	}
	if v.Recent[0].Meta != "Permits • 2 hours ago" {
		t.Fatalf("неожиданная подпись: %q", v.Recent[0].Meta)
	}
}

func TestScaleWithoutData(t *testing.T) {
	if got := Build(Datasets{Categories: []domain.CategoryPerformance{{Category: "x"}}}); got.Categories[0].Height != 0 {
		t.Fatalf("пустые данные должны давать нулевую высоту")
	}
}
