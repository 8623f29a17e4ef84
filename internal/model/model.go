package model

import (
	"context"
	"time"
)

// TimestampLayout is the display layout used for test result timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the layout used for favorite dates.
const DateLayout = "2006-01-02"

// Session represents one user's isolated interaction lifetime.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type sessionCtxKey struct{}

// ContextWithSession stores the current session in the request context.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext retrieves the current session from context, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*Session)
	return s
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// PromptTemplate is a catalog prompt with bracketed placeholders.
type PromptTemplate struct {
	Subject  string `json:"subject" yaml:"-"`
	Category string `json:"category" yaml:"category"`
	Text     string `json:"text" yaml:"text"`
}

// Technique describes one prompting technique with a good and a poor example.
type Technique struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	GoodExample string `json:"good_example" yaml:"good_example"`
	BadExample  string `json:"bad_example" yaml:"bad_example"`
}

// Tip is a titled group of best-practice advice.
type Tip struct {
	Title string   `json:"title" yaml:"title"`
	Items []string `json:"items" yaml:"items"`
}

// GeneratedPrompt is a prompt produced by the builder and saved by the user.
type GeneratedPrompt struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Subject   string    `json:"subject"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite is a catalog template the user starred.
type Favorite struct {
	ID       int64  `json:"id"`
	Subject  string `json:"subject"`
	Category string `json:"category"`
	Prompt   string `json:"prompt"`
	Date     string `json:"date"`
}

// Tier is the quality band derived from an overall score.
type Tier string

const (
	TierExcellent        Tier = "excellent"
	TierGood             Tier = "good"
	TierFair             Tier = "fair"
	TierNeedsImprovement Tier = "needs_improvement"
)

// IsPositive reports whether the tier earns the "good" response pool.
func (t Tier) IsPositive() bool {
	return t == TierExcellent || t == TierGood
}

// Scores holds the four heuristic sub-scores.
type Scores struct {
	Specificity      float64 `json:"specificity"`
	Context          float64 `json:"context"`
	Clarity          float64 `json:"clarity"`
	EducationalValue float64 `json:"educational_value"`
}

// QualityAnalysis is the scorer's verdict on a prompt.
type QualityAnalysis struct {
	OverallScore float64  `json:"overall_score"`
	Tier         Tier     `json:"quality"`
	Scores       Scores   `json:"scores"`
	Suggestions  []string `json:"suggestions"`
}

// BestArea returns the name of the highest sub-score. Ties keep the earlier area.
func (a QualityAnalysis) BestArea() string {
	areas := []struct {
		name  string
		score float64
	}{
		{"specificity", a.Scores.Specificity},
		{"context", a.Scores.Context},
		{"clarity", a.Scores.Clarity},
		{"educational_value", a.Scores.EducationalValue},
	}
	best := areas[0]
	for _, ar := range areas[1:] {
		if ar.score > best.score {
			best = ar
		}
	}
	return best.name
}

// Mode selects how the practice console handles a prompt.
type Mode string

const (
	ModeSimulate Mode = "simulate"
	ModeAnalyze  Mode = "analyze"
	ModeQuick    Mode = "quick"
	ModeLLM      Mode = "llm"
)

// TestResult records one run of the practice console.
type TestResult struct {
	ID           int64            `json:"id"`
	Prompt       string           `json:"prompt"`
	Response     *string          `json:"response,omitempty"`
	Analysis     *QualityAnalysis `json:"analysis,omitempty"`
	Provider     string           `json:"provider"`
	Model        string           `json:"model"`
	Timestamp    string           `json:"timestamp"`
	ResponseTime float64          `json:"response_time"`
	Rating       string           `json:"rating,omitempty"`
	Feedback     string           `json:"feedback,omitempty"`
}

// Ratings are the allowed values for rating a test result.
var Ratings = []string{"Poor", "Fair", "Good", "Very Good", "Excellent"}

// AppConfig holds runtime web parameters set via CLI flags.
type AppConfig struct {
	BasePath      string        // URL prefix for sub-path deployments (e.g. "/learn")
	SecureCookies bool          // Set Secure flag on cookies (disable for local dev)
	SessionTTL    time.Duration // Lifetime of a browsing session
}
