package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pavelanni/promptlab/internal/model"

	_ "modernc.org/sqlite"
)

// MemoryDSN keeps all data inside the process.
const MemoryDSN = ":memory:"

// ErrNotFound is returned when a row does not exist in the caller's session.
var ErrNotFound = errors.New("not found")

// ErrInvalidRating is returned for a rating outside model.Ratings.
var ErrInvalidRating = errors.New("invalid rating")

type Store struct {
	db *sql.DB
}

// New opens the database at dsn and creates the schema. Use MemoryDSN for a
// store that lives only as long as the process.
func New(dsn string) (*Store, error) {
	memory := dsn == MemoryDSN || strings.Contains(dsn, "mode=memory")
	if !memory && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS saved_prompts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		text TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		topic TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		UNIQUE (session_id, text, subject, topic),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS favorites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		category TEXT NOT NULL,
		prompt TEXT NOT NULL,
		date TEXT NOT NULL,
		UNIQUE (session_id, prompt),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS test_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		prompt TEXT NOT NULL,
		response TEXT,
		analysis TEXT,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		response_time REAL NOT NULL DEFAULT 0,
		rating TEXT NOT NULL DEFAULT '',
		feedback TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_test_results_session ON test_results(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddPrompt saves a generated prompt. It reports false without error when an
// identical prompt (text, subject and topic) is already saved.
func (s *Store) AddPrompt(sessionID string, p model.GeneratedPrompt) (bool, error) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO saved_prompts (session_id, text, subject, topic, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, p.Text, p.Subject, p.Topic, createdAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListPrompts returns saved prompts in save order.
func (s *Store) ListPrompts(sessionID string) ([]model.GeneratedPrompt, error) {
	rows, err := s.db.Query(
		`SELECT id, text, subject, topic, created_at FROM saved_prompts WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var prompts []model.GeneratedPrompt
	for rows.Next() {
		var p model.GeneratedPrompt
		if err := rows.Scan(&p.ID, &p.Text, &p.Subject, &p.Topic, &p.CreatedAt); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// GetPrompt returns one saved prompt of the session.
func (s *Store) GetPrompt(sessionID string, id int64) (model.GeneratedPrompt, error) {
	var p model.GeneratedPrompt
	err := s.db.QueryRow(
		`SELECT id, text, subject, topic, created_at FROM saved_prompts WHERE session_id = ? AND id = ?`, sessionID, id,
	).Scan(&p.ID, &p.Text, &p.Subject, &p.Topic, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	return p, err
}

// DeletePrompt removes a saved prompt.
func (s *Store) DeletePrompt(sessionID string, id int64) error {
	return s.deleteScoped(`DELETE FROM saved_prompts WHERE session_id = ? AND id = ?`, sessionID, id)
}

// AddFavorite stars a catalog template. It reports false without error when
// the same prompt text is already a favorite.
func (s *Store) AddFavorite(sessionID string, f model.Favorite) (bool, error) {
	date := f.Date
	if date == "" {
		date = time.Now().Format(model.DateLayout)
	}
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO favorites (session_id, subject, category, prompt, date) VALUES (?, ?, ?, ?, ?)`,
		sessionID, f.Subject, f.Category, f.Prompt, date,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListFavorites returns favorites in the order they were added.
func (s *Store) ListFavorites(sessionID string) ([]model.Favorite, error) {
	rows, err := s.db.Query(
		`SELECT id, subject, category, prompt, date FROM favorites WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var favs []model.Favorite
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.Subject, &f.Category, &f.Prompt, &f.Date); err != nil {
			return nil, err
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

// GetFavorite returns one favorite of the session.
func (s *Store) GetFavorite(sessionID string, id int64) (model.Favorite, error) {
	var f model.Favorite
	err := s.db.QueryRow(
		`SELECT id, subject, category, prompt, date FROM favorites WHERE session_id = ? AND id = ?`, sessionID, id,
	).Scan(&f.ID, &f.Subject, &f.Category, &f.Prompt, &f.Date)
	if err == sql.ErrNoRows {
		return f, ErrNotFound
	}
	return f, err
}

// DeleteFavorite removes a favorite.
func (s *Store) DeleteFavorite(sessionID string, id int64) error {
	return s.deleteScoped(`DELETE FROM favorites WHERE session_id = ? AND id = ?`, sessionID, id)
}

// AddTestResult appends a console result and returns its ID.
func (s *Store) AddTestResult(sessionID string, r model.TestResult) (int64, error) {
	var analysis sql.NullString
	if r.Analysis != nil {
		data, err := json.Marshal(r.Analysis)
		if err != nil {
			return 0, fmt.Errorf("encode analysis: %w", err)
		}
		analysis = sql.NullString{String: string(data), Valid: true}
	}
	var response sql.NullString
	if r.Response != nil {
		response = sql.NullString{String: *r.Response, Valid: true}
	}
	res, err := s.db.Exec(
		`INSERT INTO test_results (session_id, prompt, response, analysis, provider, model, timestamp, response_time, rating, feedback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, r.Prompt, response, analysis, r.Provider, r.Model, r.Timestamp, r.ResponseTime, r.Rating, r.Feedback,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListTestResults returns the session's console history, oldest first.
func (s *Store) ListTestResults(sessionID string) ([]model.TestResult, error) {
	rows, err := s.db.Query(
		`SELECT id, prompt, response, analysis, provider, model, timestamp, response_time, rating, feedback
		 FROM test_results WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.TestResult
	for rows.Next() {
		var (
			r        model.TestResult
			response sql.NullString
			analysis sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Prompt, &response, &analysis, &r.Provider, &r.Model,
			&r.Timestamp, &r.ResponseTime, &r.Rating, &r.Feedback); err != nil {
			return nil, err
		}
		if response.Valid {
			text := response.String
			r.Response = &text
		}
		if analysis.Valid {
			var a model.QualityAnalysis
			if err := json.Unmarshal([]byte(analysis.String), &a); err != nil {
				return nil, fmt.Errorf("decode analysis of result %d: %w", r.ID, err)
			}
			r.Analysis = &a
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// RateTestResult records the user's rating and reflection on a result.
func (s *Store) RateTestResult(sessionID string, id int64, rating, feedback string) error {
	if !slices.Contains(model.Ratings, rating) {
		return fmt.Errorf("%w: %q", ErrInvalidRating, rating)
	}
	res, err := s.db.Exec(
		`UPDATE test_results SET rating = ?, feedback = ? WHERE session_id = ? AND id = ?`,
		rating, feedback, sessionID, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearTestResults wipes the session's console history.
func (s *Store) ClearTestResults(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM test_results WHERE session_id = ?`, sessionID)
	return err
}

func (s *Store) deleteScoped(query, sessionID string, id int64) error {
	res, err := s.db.Exec(query, sessionID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
