package quality

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pavelanni/promptlab/internal/model"
)

const biologyPrompt = "Act as my patient biology tutor. I'm a high school student studying cellular respiration. Can you explain this step by step with examples?"

func TestAnalyzeExplain(t *testing.T) {
	a := Analyze("explain")

	want := model.Scores{Specificity: 1, Context: 0, Clarity: 2, EducationalValue: 4}
	if a.Scores != want {
		t.Errorf("Scores = %+v, want %+v", a.Scores, want)
	}
	if a.OverallScore != 1.8 {
		t.Errorf("OverallScore = %v, want 1.8", a.OverallScore)
	}
	if a.Tier != model.TierNeedsImprovement {
		t.Errorf("Tier = %q, want %q", a.Tier, model.TierNeedsImprovement)
	}
	wantSuggestions := []string{
		suggestSpecificity, suggestContext, suggestClarity,
		suggestEducational, suggestExpand, suggestQuestion,
	}
	if !reflect.DeepEqual(a.Suggestions, wantSuggestions) {
		t.Errorf("Suggestions = %q, want %q", a.Suggestions, wantSuggestions)
	}
}

func TestAnalyzeBiologyTutor(t *testing.T) {
	a := Analyze(biologyPrompt)

	want := model.Scores{Specificity: 5, Context: 7.5, Clarity: 9, EducationalValue: 5}
	if a.Scores != want {
		t.Errorf("Scores = %+v, want %+v", a.Scores, want)
	}
	if a.OverallScore != 6.6 {
		t.Errorf("OverallScore = %v, want 6.6", a.OverallScore)
	}
	if !a.Tier.IsPositive() {
		t.Errorf("Tier = %q, want good or excellent", a.Tier)
	}
	if len(a.Suggestions) != 0 {
		t.Errorf("Suggestions = %q, want none", a.Suggestions)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze("")
	if a.OverallScore != 0.5 {
		t.Errorf("OverallScore = %v, want 0.5", a.OverallScore)
	}
	if a.Tier != model.TierNeedsImprovement {
		t.Errorf("Tier = %q, want %q", a.Tier, model.TierNeedsImprovement)
	}
	if len(a.Suggestions) != 6 {
		t.Errorf("got %d suggestions, want 6", len(a.Suggestions))
	}
}

func TestAnalyzeIsCaseInsensitive(t *testing.T) {
	lower := Analyze(strings.ToLower(biologyPrompt))
	upper := Analyze(strings.ToUpper(biologyPrompt))
	if lower.Scores != upper.Scores {
		t.Errorf("case changed scores: %+v vs %+v", lower.Scores, upper.Scores)
	}
}

func TestAnalyzeIgnoresNegation(t *testing.T) {
	a := Analyze("don't explain")
	if a.Scores.Specificity != 1 {
		t.Errorf("Specificity = %v, want 1", a.Scores.Specificity)
	}
}

func TestAnalyzeBounds(t *testing.T) {
	prompts := []string{
		"",
		"?",
		"x",
		strings.Repeat("word ", 200),
		"explain analyze compare solve step by step example specific particular exactly precisely math",
		"I'm a grade level student learning studying understand know background currently previously in high school",
		"? help me can you please i need how do i what is why does when should where can",
		"learn understand practice study explain teach concept theory principle method process why how what if compare contrast analyze evaluate teach me",
		biologyPrompt,
	}
	for _, p := range prompts {
		a := Analyze(p)
		for name, s := range map[string]float64{
			"specificity":       a.Scores.Specificity,
			"context":           a.Scores.Context,
			"clarity":           a.Scores.Clarity,
			"educational_value": a.Scores.EducationalValue,
			"overall":           a.OverallScore,
		} {
			if s < 0 || s > 10 {
				t.Errorf("Analyze(%.20q) %s = %v, out of [0,10]", p, name, s)
			}
		}
		mean := Round1((a.Scores.Specificity + a.Scores.Context + a.Scores.Clarity + a.Scores.EducationalValue) / 4)
		if a.OverallScore != mean {
			t.Errorf("Analyze(%.20q) overall = %v, want mean %v", p, a.OverallScore, mean)
		}
		if a.Tier != Classify(a.OverallScore) {
			t.Errorf("Analyze(%.20q) tier = %q, want %q", p, a.Tier, Classify(a.OverallScore))
		}
	}
}

func TestAnalyzeCaps(t *testing.T) {
	a := Analyze("explain analyze compare solve step by step example specific particular exactly precisely math")
	if a.Scores.Specificity != 10 {
		t.Errorf("Specificity = %v, want capped 10", a.Scores.Specificity)
	}

	a = Analyze("I'm a grade level student learning studying understand know background currently previously in high school")
	if a.Scores.Context != 10 {
		t.Errorf("Context = %v, want capped 10", a.Scores.Context)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Tier
	}{
		{10, model.TierExcellent},
		{7.0, model.TierExcellent},
		{6.9, model.TierGood},
		{5.0, model.TierGood},
		{4.9, model.TierFair},
		{3.0, model.TierFair},
		{2.9, model.TierNeedsImprovement},
		{0, model.TierNeedsImprovement},
	}
	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.75, 1.8},
		{6.625, 6.6},
		{0.125, 0.1},
		{2.375, 2.4},
		{5, 5},
	}
	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.want {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestQuickAssessment(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{8.0, "Quick Assessment: Your prompt scored 8.0/10. This is excellent for educational use!"},
		{6.6, "Quick Assessment: Your prompt scored 6.6/10. This is good but could be improved."},
		{1.8, "Quick Assessment: Your prompt scored 1.8/10. This needs improvement for better AI responses."},
	}
	for _, tt := range tests {
		got := QuickAssessment(model.QualityAnalysis{OverallScore: tt.score})
		if got != tt.want {
			t.Errorf("QuickAssessment(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{9, BandGreat},
		{8, BandGreat},
		{6, BandOK},
		{4, BandWeak},
		{3.9, BandPoor},
	}
	for _, tt := range tests {
		if got := Level(tt.score); got != tt.want {
			t.Errorf("Level(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
