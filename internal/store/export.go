package store

import (
	"fmt"
	"math"
	"time"

	"github.com/pavelanni/promptlab/internal/model"
)

// ExportSession gathers everything a session owns into one document.
func (s *Store) ExportSession(sessionID string) (*model.SessionExport, error) {
	prompts, err := s.ListPrompts(sessionID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	favs, err := s.ListFavorites(sessionID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	results, err := s.ListTestResults(sessionID)
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}

	exp := &model.SessionExport{
		SessionID:    sessionID,
		ExportedAt:   time.Now().UTC(),
		SavedPrompts: nonNil(prompts),
		Favorites:    nonNil(favs),
		TestResults:  nonNil(results),
		Summary:      summarize(results),
	}
	return exp, nil
}

func summarize(results []model.TestResult) model.ExportSummary {
	sum := model.ExportSummary{Tests: len(results)}
	var total float64
	for _, r := range results {
		if r.Rating != "" {
			if sum.Ratings == nil {
				sum.Ratings = make(map[string]int)
			}
			sum.Ratings[r.Rating]++
		}
		if r.Analysis == nil {
			continue
		}
		sum.Analyzed++
		total += r.Analysis.OverallScore
		sum.BestScore = math.Max(sum.BestScore, r.Analysis.OverallScore)
	}
	if sum.Analyzed > 0 {
		sum.AverageScore = math.Round(total/float64(sum.Analyzed)*10) / 10
	}
	return sum
}

// nonNil keeps empty lists as [] in the exported JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
