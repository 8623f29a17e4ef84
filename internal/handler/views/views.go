// Package views holds the templ components for the HTML pages and the view
// models the handlers fill in.
package views

//go:generate templ generate

import (
	"context"
	"net/url"
	"strconv"

	appI18n "github.com/pavelanni/promptlab/internal/i18n"
	"github.com/pavelanni/promptlab/internal/model"
	"github.com/pavelanni/promptlab/internal/prompts"
	"github.com/pavelanni/promptlab/internal/quality"
)

// Builder form field names.
const (
	FieldGradeLevel        = "grade_level"
	FieldSubject           = "subject"
	FieldLearningGoal      = "learning_goal"
	FieldUnderstanding     = "current_understanding"
	FieldAIRole            = "ai_role"
	FieldInteractionStyle  = "interaction_style"
	FieldFeedback          = "feedback"
	FieldTopic             = "topic"
	FieldBackground        = "background"
	FieldFormats           = "formats"
	FieldLearningStyles    = "learning_styles"
	FieldDetailLevel       = "detail_level"
	FieldTaskType          = "task_type"
	FieldFollowUp          = "follow_up"
	FieldCommonMistakes    = "common_mistakes"
	FieldExamFocus         = "exam_focus"
	FieldCareerConnections = "career_connections"
	FieldPrerequisiteCheck = "prerequisite_check"
	FieldText              = "text"
)

// Console form field names beyond the builder's.
const (
	FieldPrompt      = "prompt"
	FieldMode        = "mode"
	FieldSubjectHint = "subject_hint"
	FieldProvider    = "provider"
	FieldModel       = "model"
	FieldAPIKey      = "api_key"
	FieldEnhance     = "enhance"
	FieldResultID    = "result_id"
	FieldRating      = "rating"
	FieldFeedbackTxt = "reflection"
)

// HomeStats are the counters shown on the home page.
type HomeStats struct {
	Subjects   int
	Templates  int
	Techniques int
	Saved      int
	Favorites  int
	Tests      int
}

// SubjectsData drives the template browser.
type SubjectsData struct {
	Subjects  []string
	Selected  string
	Templates []model.PromptTemplate
	Notice    string
}

// BuilderData drives both prompt builder pages.
type BuilderData struct {
	Profile   prompts.Profile
	Options   prompts.Options
	Input     prompts.Input
	Generated string
	Analysis  *model.QualityAnalysis
	Error     string
	Notice    string
}

type ModeOption struct {
	Value model.Mode
	Label string
}

type ProviderOption struct {
	ID           string
	Name         string
	DefaultModel string
	NeedsKey     bool
	HasKey       bool
}

// ConsoleData drives the test console.
type ConsoleData struct {
	Prompt      string
	Mode        model.Mode
	Modes       []ModeOption
	Subjects    []string
	SubjectHint string
	Providers   []ProviderOption
	Provider    string
	Model       string
	// Recommended is a Hugging Face model suggestion for Prompt.
	Recommended string
	History     []model.TestResult
	Ratings     []string
	Error       string
	Notice      string
}

// SavedData lists the session's saved prompts and favorites.
type SavedData struct {
	Prompts   []model.GeneratedPrompt
	Favorites []model.Favorite
	Notice    string
}

func t(ctx context.Context, id string) string {
	return appI18n.T(ctx, id)
}

// Path prefixes p with the deployment base path.
func Path(ctx context.Context, p string) string {
	return model.BasePathFromContext(ctx) + p
}

// ConsoleLink opens the test console with the prompt prefilled.
func ConsoleLink(ctx context.Context, prompt string) string {
	return Path(ctx, "/console?"+url.Values{"prompt": {prompt}}.Encode())
}

type navItem struct {
	path, label string
}

var navItems = []navItem{
	{"/", "NavHome"},
	{"/subjects", "NavSubjects"},
	{"/techniques", "NavTechniques"},
	{"/builder/advanced", "NavBuilder"},
	{"/builder/basic", "NavBasicBuilder"},
	{"/console", "NavConsole"},
	{"/saved", "NavSaved"},
	{"/tips", "NavTips"},
}

type statRow struct {
	id    string
	count int
}

func homeStats(s HomeStats) []statRow {
	return []statRow{
		{"StatSubjects", s.Subjects},
		{"StatTemplates", s.Templates},
		{"StatTechniques", s.Techniques},
		{"StatSaved", s.Saved},
		{"StatFavorites", s.Favorites},
		{"StatTests", s.Tests},
	}
}

func builderTitle(ctx context.Context, p prompts.Profile) (string, string) {
	if p == prompts.ProfileBasic {
		return appI18n.T(ctx, "BasicBuilderTitle"), "/builder/basic"
	}
	return appI18n.T(ctx, "BuilderTitle"), "/builder/advanced"
}

// selectedFormats falls back to the profile defaults before the first submit.
func selectedFormats(d BuilderData) []string {
	if d.Input.ResponseFormats == nil {
		return d.Options.DefaultFormats
	}
	return d.Input.ResponseFormats
}

func selectedDetail(d BuilderData) string {
	if d.Input.DetailLevel == "" {
		return d.Options.DefaultDetail
	}
	return d.Input.DetailLevel
}

// scoreClass maps a score to the CSS class of its band.
func scoreClass(score float64) string {
	if b := quality.Level(score); b != quality.BandOK {
		return string(b)
	}
	return "ok-score"
}

func scoreText(ctx context.Context, a model.QualityAnalysis) string {
	return appI18n.Td(ctx, "ScoreLine", map[string]any{
		"Score": quality.FormatScore(a.OverallScore),
		"Tier":  appI18n.T(ctx, "Tier_"+string(a.Tier)),
	})
}

type scoreRow struct {
	id    string
	score float64
}

func scoreRows(a model.QualityAnalysis) []scoreRow {
	return []scoreRow{
		{"ScoreSpecificity", a.Scores.Specificity},
		{"ScoreContext", a.Scores.Context},
		{"ScoreClarity", a.Scores.Clarity},
		{"ScoreEducational", a.Scores.EducationalValue},
	}
}

func resultMeta(r model.TestResult) string {
	s := r.Timestamp + " | " + r.Provider + " | " + r.Model + " | " + strconv.FormatFloat(r.ResponseTime, 'f', 2, 64) + "s"
	if r.Rating != "" {
		s += " | " + r.Rating
	}
	return s
}

func providerLabel(p ProviderOption) string {
	return p.Name + " (" + p.DefaultModel + ")"
}

// latest is the most recent result; callers check for an empty history.
func latest(h []model.TestResult) model.TestResult {
	return h[len(h)-1]
}

// newestFirst returns the history in reverse order.
func newestFirst(h []model.TestResult) []model.TestResult {
	out := make([]model.TestResult, 0, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		out = append(out, h[i])
	}
	return out
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
