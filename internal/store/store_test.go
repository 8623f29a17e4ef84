package store

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pavelanni/promptlab/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(MemoryDSN)
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestSession(t *testing.T, s *Store) string {
	t.Helper()
	sess, err := s.CreateSession(time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return sess.ID
}

func insertExpiredSession(t *testing.T, s *Store, id string) {
	t.Helper()
	past := time.Now().UTC().Add(-2 * time.Hour)
	_, err := s.db.Exec(`INSERT INTO sessions (id, created_at, expires_at) VALUES (?, ?, ?)`,
		id, past, past.Add(time.Hour))
	if err != nil {
		t.Fatalf("insertExpiredSession: %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)

	sess, err := s.CreateSession(time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected a session ID")
	}
	if !sess.ExpiresAt.After(sess.CreatedAt) {
		t.Errorf("ExpiresAt %v should be after CreatedAt %v", sess.ExpiresAt, sess.CreatedAt)
	}

	got, err := s.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil || got.ID != sess.ID {
		t.Fatalf("GetSession = %+v, want ID %s", got, sess.ID)
	}

	if _, err := s.AddPrompt(sess.ID, model.GeneratedPrompt{Text: "p", Topic: "t"}); err != nil {
		t.Fatalf("AddPrompt: %v", err)
	}
	if err := s.DiscardSession(sess.ID); err != nil {
		t.Fatalf("DiscardSession: %v", err)
	}
	got, err = s.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("GetSession after discard: %v", err)
	}
	if got != nil {
		t.Fatal("discarded session should be gone")
	}
	prompts, err := s.ListPrompts(sess.ID)
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(prompts) != 0 {
		t.Errorf("discarded session still owns %d prompts", len(prompts))
	}

	missing, err := s.GetSession("no-such-session")
	if err != nil || missing != nil {
		t.Errorf("GetSession(unknown) = %v, %v; want nil, nil", missing, err)
	}
}

func TestExpiredSessionDiscardFailureIsLogged(t *testing.T) {
	s := newTestStore(t)
	insertExpiredSession(t, s, "stuck")
	_, err := s.db.Exec(`CREATE TRIGGER keep_sessions BEFORE DELETE ON sessions
		BEGIN SELECT RAISE(ABORT, 'sessions are read-only'); END`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	got, err := s.GetSession("stuck")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Fatal("expired session should not be returned")
	}
	out := buf.String()
	if !strings.Contains(out, "discard expired session") || !strings.Contains(out, "read-only") {
		t.Errorf("log = %q, want the discard failure", out)
	}
}

func TestExpiredSessions(t *testing.T) {
	s := newTestStore(t)

	insertExpiredSession(t, s, "old")
	if _, err := s.AddFavorite("old", model.Favorite{Subject: "Math", Category: "c", Prompt: "x"}); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	got, err := s.GetSession("old")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Fatal("expired session should not be returned")
	}

	insertExpiredSession(t, s, "older")
	if _, err := s.AddTestResult("older", model.TestResult{Prompt: "p", Provider: "x", Model: "y"}); err != nil {
		t.Fatalf("AddTestResult: %v", err)
	}
	// Creating a session sweeps expired ones.
	newTestSession(t, s)
	results, err := s.ListTestResults("older")
	if err != nil {
		t.Fatalf("ListTestResults: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expired session kept %d results", len(results))
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id IN ('old', 'older')`).Scan(&n); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if n != 0 {
		t.Errorf("expected expired sessions removed, %d remain", n)
	}
}

func TestPrompts(t *testing.T) {
	s := newTestStore(t)
	sid := newTestSession(t, s)

	p := model.GeneratedPrompt{Text: "Explain cells.", Subject: "Biology", Topic: "cells"}
	added, err := s.AddPrompt(sid, p)
	if err != nil {
		t.Fatalf("AddPrompt: %v", err)
	}
	if !added {
		t.Fatal("first AddPrompt should add")
	}
	added, err = s.AddPrompt(sid, p)
	if err != nil {
		t.Fatalf("AddPrompt duplicate: %v", err)
	}
	if added {
		t.Error("identical prompt should not be added twice")
	}
	// Same text under another topic is a different prompt.
	if added, _ := s.AddPrompt(sid, model.GeneratedPrompt{Text: p.Text, Subject: p.Subject, Topic: "mitosis"}); !added {
		t.Error("prompt with a different topic should be added")
	}

	list, err := s.ListPrompts(sid)
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(list))
	}
	if list[0].Topic != "cells" || list[0].CreatedAt.IsZero() {
		t.Errorf("unexpected first prompt %+v", list[0])
	}

	got, err := s.GetPrompt(sid, list[1].ID)
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if got.Topic != "mitosis" {
		t.Errorf("GetPrompt topic = %q", got.Topic)
	}

	if err := s.DeletePrompt(sid, list[0].ID); err != nil {
		t.Fatalf("DeletePrompt: %v", err)
	}
	if err := s.DeletePrompt(sid, list[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePrompt error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetPrompt(sid, list[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPrompt deleted error = %v, want ErrNotFound", err)
	}
}

func TestFavoritesIdempotent(t *testing.T) {
	s := newTestStore(t)
	sid := newTestSession(t, s)

	fav := model.Favorite{Subject: "Mathematics", Category: "Problem Solving", Prompt: "Walk me through [problem]."}
	for i, want := range []bool{true, false, false} {
		added, err := s.AddFavorite(sid, fav)
		if err != nil {
			t.Fatalf("AddFavorite #%d: %v", i, err)
		}
		if added != want {
			t.Errorf("AddFavorite #%d added = %v, want %v", i, added, want)
		}
	}

	favs, err := s.ListFavorites(sid)
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(favs) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(favs))
	}
	if favs[0].Date == "" {
		t.Error("favorite date should default to today")
	}
	if _, err := time.Parse(model.DateLayout, favs[0].Date); err != nil {
		t.Errorf("favorite date %q: %v", favs[0].Date, err)
	}

	got, err := s.GetFavorite(sid, favs[0].ID)
	if err != nil || got.Prompt != fav.Prompt {
		t.Errorf("GetFavorite = %+v, %v", got, err)
	}
	if err := s.DeleteFavorite(sid, favs[0].ID); err != nil {
		t.Fatalf("DeleteFavorite: %v", err)
	}
	if added, _ := s.AddFavorite(sid, fav); !added {
		t.Error("favorite should be addable again after delete")
	}
}

func TestTestResults(t *testing.T) {
	s := newTestStore(t)
	sid := newTestSession(t, s)

	analysis := &model.QualityAnalysis{
		OverallScore: 6.6,
		Tier:         model.TierGood,
		Scores:       model.Scores{Specificity: 5, Context: 7.5, Clarity: 9, EducationalValue: 5},
		Suggestions:  []string{},
	}
	id1, err := s.AddTestResult(sid, model.TestResult{
		Prompt: "first", Analysis: analysis, Provider: "Educational Simulator",
		Model: "Prompt Quality Analysis Only", Timestamp: "2026-05-04 09:30:01", ResponseTime: 0.01,
	})
	if err != nil {
		t.Fatalf("AddTestResult: %v", err)
	}
	id2, err := s.AddTestResult(sid, model.TestResult{
		Prompt: "second", Response: strPtr("hello"), Provider: "openai", Model: "gpt-3.5-turbo",
		Timestamp: "2026-05-04 09:31:00", ResponseTime: 1.5,
	})
	if err != nil {
		t.Fatalf("AddTestResult: %v", err)
	}

	list, err := s.ListTestResults(sid)
	if err != nil {
		t.Fatalf("ListTestResults: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 results, got %d", len(list))
	}
	if list[0].ID != id1 || list[0].Response != nil {
		t.Errorf("first result = %+v, want nil response", list[0])
	}
	if list[0].Analysis == nil || list[0].Analysis.Scores.Context != 7.5 || list[0].Analysis.Tier != model.TierGood {
		t.Errorf("analysis did not round-trip: %+v", list[0].Analysis)
	}
	if list[1].Response == nil || *list[1].Response != "hello" || list[1].Analysis != nil {
		t.Errorf("second result = %+v", list[1])
	}

	if err := s.RateTestResult(sid, id2, "Very Good", "clear answer"); err != nil {
		t.Fatalf("RateTestResult: %v", err)
	}
	if err := s.RateTestResult(sid, id2, "Stellar", ""); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("invalid rating error = %v, want ErrInvalidRating", err)
	}
	if err := s.RateTestResult(sid, 9999, "Good", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing result error = %v, want ErrNotFound", err)
	}
	list, _ = s.ListTestResults(sid)
	if list[1].Rating != "Very Good" || list[1].Feedback != "clear answer" {
		t.Errorf("rating not stored: %+v", list[1])
	}

	if err := s.ClearTestResults(sid); err != nil {
		t.Fatalf("ClearTestResults: %v", err)
	}
	list, _ = s.ListTestResults(sid)
	if len(list) != 0 {
		t.Errorf("expected empty history, got %d", len(list))
	}
}

func TestSessionIsolation(t *testing.T) {
	s := newTestStore(t)
	a := newTestSession(t, s)
	b := newTestSession(t, s)

	if _, err := s.AddPrompt(a, model.GeneratedPrompt{Text: "mine"}); err != nil {
		t.Fatalf("AddPrompt: %v", err)
	}
	if _, err := s.AddFavorite(a, model.Favorite{Subject: "s", Category: "c", Prompt: "fav"}); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	rid, err := s.AddTestResult(a, model.TestResult{Prompt: "p", Provider: "x", Model: "y"})
	if err != nil {
		t.Fatalf("AddTestResult: %v", err)
	}

	prompts, _ := s.ListPrompts(b)
	favs, _ := s.ListFavorites(b)
	results, _ := s.ListTestResults(b)
	if len(prompts)+len(favs)+len(results) != 0 {
		t.Fatalf("session b sees a's data: %d prompts, %d favorites, %d results", len(prompts), len(favs), len(results))
	}

	// The same favorite text is independent per session.
	if added, _ := s.AddFavorite(b, model.Favorite{Subject: "s", Category: "c", Prompt: "fav"}); !added {
		t.Error("favorite text should be addable in another session")
	}

	aPrompts, _ := s.ListPrompts(a)
	if err := s.DeletePrompt(b, aPrompts[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-session delete error = %v, want ErrNotFound", err)
	}
	if err := s.RateTestResult(b, rid, "Good", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-session rating error = %v, want ErrNotFound", err)
	}
	if err := s.ClearTestResults(b); err != nil {
		t.Fatalf("ClearTestResults: %v", err)
	}
	if results, _ := s.ListTestResults(a); len(results) != 1 {
		t.Errorf("clearing b removed a's history: %d left", len(results))
	}
}

func TestExportSession(t *testing.T) {
	s := newTestStore(t)
	sid := newTestSession(t, s)

	empty, err := s.ExportSession(sid)
	if err != nil {
		t.Fatalf("ExportSession: %v", err)
	}
	if empty.SavedPrompts == nil || empty.Favorites == nil || empty.TestResults == nil {
		t.Error("empty export should carry empty lists, not nil")
	}
	if empty.Summary.Tests != 0 || empty.Summary.AverageScore != 0 {
		t.Errorf("unexpected empty summary %+v", empty.Summary)
	}

	for _, score := range []float64{4, 7} {
		_, err := s.AddTestResult(sid, model.TestResult{
			Prompt: "p", Provider: "x", Model: "y",
			Analysis: &model.QualityAnalysis{OverallScore: score, Tier: model.TierFair},
		})
		if err != nil {
			t.Fatalf("AddTestResult: %v", err)
		}
	}
	id, _ := s.AddTestResult(sid, model.TestResult{Prompt: "live", Response: strPtr("r"), Provider: "ollama", Model: "llama2"})
	if err := s.RateTestResult(sid, id, "Good", ""); err != nil {
		t.Fatalf("RateTestResult: %v", err)
	}
	if _, err := s.AddPrompt(sid, model.GeneratedPrompt{Text: "saved"}); err != nil {
		t.Fatalf("AddPrompt: %v", err)
	}

	exp, err := s.ExportSession(sid)
	if err != nil {
		t.Fatalf("ExportSession: %v", err)
	}
	if exp.SessionID != sid || len(exp.SavedPrompts) != 1 || len(exp.TestResults) != 3 {
		t.Errorf("unexpected export contents %+v", exp)
	}
	want := model.ExportSummary{Tests: 3, Analyzed: 2, AverageScore: 5.5, BestScore: 7, Ratings: map[string]int{"Good": 1}}
	if exp.Summary.Tests != want.Tests || exp.Summary.Analyzed != want.Analyzed ||
		exp.Summary.AverageScore != want.AverageScore || exp.Summary.BestScore != want.BestScore ||
		exp.Summary.Ratings["Good"] != 1 {
		t.Errorf("Summary = %+v, want %+v", exp.Summary, want)
	}
}
