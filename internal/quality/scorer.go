// Package quality grades prompts with a best-effort lexical heuristic.
//
// The scores are a teaching aid. They reward the presence of phrases that tend
// to appear in well-formed educational prompts and say nothing about whether a
// prompt will actually produce a good answer.
package quality

import (
	"fmt"
	"math"
	"strings"

	"github.com/pavelanni/promptlab/internal/model"
)

const maxScore = 10.0

// Analyze scores a prompt. It is total over strings: empty input yields a valid,
// low-scoring analysis.
func Analyze(prompt string) model.QualityAnalysis {
	p := strings.ToLower(prompt)
	words := len(strings.Fields(p))

	scores := model.Scores{
		Specificity:      scoreSpecificity(p),
		Context:          scoreContext(p),
		Clarity:          scoreClarity(p, words),
		EducationalValue: scoreEducationalValue(p),
	}
	overall := Round1((scores.Specificity + scores.Context + scores.Clarity + scores.EducationalValue) / 4)

	return model.QualityAnalysis{
		OverallScore: overall,
		Tier:         Classify(overall),
		Scores:       scores,
		Suggestions:  suggestions(scores, p, words),
	}
}

// Classify maps an overall score to its tier. Lower bounds are inclusive.
func Classify(score float64) model.Tier {
	switch {
	case score >= 7:
		return model.TierExcellent
	case score >= 5:
		return model.TierGood
	case score >= 3:
		return model.TierFair
	default:
		return model.TierNeedsImprovement
	}
}

// Round1 rounds to one decimal place, ties to even.
func Round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

func scoreSpecificity(p string) float64 {
	score := 1.0 * float64(countMatches(p, specificityKeywords))
	if containsAny(p, subjectKeywords) {
		score += 2
	}
	return math.Min(score, maxScore)
}

func scoreContext(p string) float64 {
	score := 1.5 * float64(countMatches(p, contextIndicators))
	if containsAny(p, gradeLevels) {
		score += 3
	}
	return math.Min(score, maxScore)
}

func scoreClarity(p string, words int) float64 {
	score := 5.0 + float64(countMatches(p, clarityIndicators))
	if words < 5 {
		score -= 3
	}
	if words >= 10 && words <= 50 {
		score += 2
	}
	return clamp(score)
}

func scoreEducationalValue(p string) float64 {
	score := 1.0 * float64(countMatches(p, educationalKeywords))
	if containsAny(p, explanationRequests) {
		score += 3
	}
	return math.Min(score, maxScore)
}

func suggestions(s model.Scores, p string, words int) []string {
	var out []string
	if s.Specificity < 5 {
		out = append(out, suggestSpecificity)
	}
	if s.Context < 5 {
		out = append(out, suggestContext)
	}
	if s.Clarity < 5 {
		out = append(out, suggestClarity)
	}
	if s.EducationalValue < 5 {
		out = append(out, suggestEducational)
	}
	if words < 10 {
		out = append(out, suggestExpand)
	}
	if !strings.Contains(p, "?") {
		out = append(out, suggestQuestion)
	}
	return out
}

func countMatches(p string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(p, k) {
			n++
		}
	}
	return n
}

func containsAny(p string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(p, k) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, maxScore))
}

// QuickAssessment renders the one-line verdict used by the quick check mode.
func QuickAssessment(a model.QualityAnalysis) string {
	verdict := "This needs improvement for better AI responses."
	switch {
	case a.OverallScore >= 8:
		verdict = "This is excellent for educational use!"
	case a.OverallScore >= 6:
		verdict = "This is good but could be improved."
	}
	return fmt.Sprintf("Quick Assessment: Your prompt scored %s/10. %s", FormatScore(a.OverallScore), verdict)
}

// FormatScore prints a score the way the UI shows it: integers keep one decimal.
func FormatScore(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// Band is a coarse display bucket for a score.
type Band string

const (
	BandGreat Band = "great"
	BandOK    Band = "ok"
	BandWeak  Band = "weak"
	BandPoor  Band = "poor"
)

// Level maps a score to its display band.
func Level(score float64) Band {
	switch {
	case score >= 8:
		return BandGreat
	case score >= 6:
		return BandOK
	case score >= 4:
		return BandWeak
	default:
		return BandPoor
	}
}
