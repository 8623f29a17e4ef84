package model

import "time"

// SessionExport is the JSON document a user downloads from the saved page.
type SessionExport struct {
	SessionID    string            `json:"session_id"`
	ExportedAt   time.Time         `json:"exported_at"`
	SavedPrompts []GeneratedPrompt `json:"saved_prompts"`
	Favorites    []Favorite        `json:"favorites"`
	TestResults  []TestResult      `json:"test_results"`
	Summary      ExportSummary     `json:"summary"`
}

// ExportSummary aggregates the session's console history.
type ExportSummary struct {
	Tests        int            `json:"tests"`
	Analyzed     int            `json:"analyzed"`
	AverageScore float64        `json:"average_score"`
	BestScore    float64        `json:"best_score"`
	Ratings      map[string]int `json:"ratings,omitempty"`
}
