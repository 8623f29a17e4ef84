// Package prompts assembles study prompts from builder form selections.
//
// An Assembler is an ordered list of clauses. Each clause looks at the form
// input and either contributes one sentence or stays silent; the contributed
// sentences are joined with single spaces. Two presets exist: the advanced
// builder and the older basic builder.
package prompts

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pavelanni/promptlab/internal/model"
)

// Profile names an assembler preset.
type Profile string

const (
	// ProfileAdvanced is the twelve-clause educational prompt builder.
	ProfileAdvanced Profile = "advanced"
	// ProfileBasic is the short context/task/format/detail builder.
	ProfileBasic Profile = "basic"
)

// ErrEmptyTopic is returned by Validate when no topic was entered.
var ErrEmptyTopic = errors.New("topic is required")

// ErrUnknownProfile is returned by Build for a profile that has no preset.
var ErrUnknownProfile = errors.New("unknown prompt profile")

// topicDisplayLimit is the number of runes of a topic kept for listings.
const topicDisplayLimit = 50

// Input holds every builder form field. Unset strings and nil slices mean
// "not selected".
type Input struct {
	GradeLevel           string
	Subject              string
	LearningGoal         string
	CurrentUnderstanding string
	AIRole               string
	InteractionStyle     string
	FeedbackPreferences  []string
	Topic                string
	Background           string
	ResponseFormats      []string
	LearningStyles       []string
	DetailLevel          string
	TaskType             string

	FollowUp          bool
	CommonMistakes    bool
	ExamFocus         bool
	CareerConnections bool
	PrerequisiteCheck bool
}

// clause renders one sentence of a prompt, or reports false to be skipped.
type clause func(in Input) (string, bool)

// Assembler renders Input into a prompt through a fixed sequence of clauses.
type Assembler struct {
	profile Profile
	clauses []clause
}

// Profile returns the preset this assembler implements.
func (a *Assembler) Profile() Profile {
	return a.profile
}

// Assemble renders the input. It never fails: unmapped selections fall back
// to generic phrases or are left out.
func (a *Assembler) Assemble(in Input) string {
	parts := make([]string, 0, len(a.clauses))
	for _, c := range a.clauses {
		if s, ok := c(in); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

var presets = map[Profile]*Assembler{
	ProfileAdvanced: {profile: ProfileAdvanced, clauses: advancedClauses},
	ProfileBasic:    {profile: ProfileBasic, clauses: basicClauses},
}

// IsValidProfile checks if a profile name has a preset.
func IsValidProfile(p string) bool {
	_, ok := presets[Profile(p)]
	return ok
}

// MustAssembler returns the preset for p and panics if there is none.
func MustAssembler(p Profile) *Assembler {
	a, ok := presets[p]
	if !ok {
		panic(fmt.Sprintf("prompts: no assembler for profile %q", p))
	}
	return a
}

// Build renders the input with the named profile.
func Build(p Profile, in Input) (string, error) {
	a, ok := presets[p]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProfile, p)
	}
	return a.Assemble(in), nil
}

// Validate performs the presence checks that run before assembly.
func Validate(in Input) error {
	if strings.TrimSpace(in.Topic) == "" {
		return ErrEmptyTopic
	}
	return nil
}

// TruncateTopic shortens a topic for listings: more than 50 runes are cut to
// 50 followed by "...".
func TruncateTopic(topic string) string {
	if utf8.RuneCountInString(topic) <= topicDisplayLimit {
		return topic
	}
	return string([]rune(topic)[:topicDisplayLimit]) + "..."
}

// NewGeneratedPrompt wraps builder output for saving.
func NewGeneratedPrompt(text, subject, topic string, now time.Time) model.GeneratedPrompt {
	return model.GeneratedPrompt{
		Text:      text,
		Subject:   subject,
		Topic:     TruncateTopic(topic),
		CreatedAt: now,
	}
}

// phrase maps one selectable form option to the text it contributes.
type phrase struct {
	option string
	text   string
}

// phrases is an ordered option table; order is the display order in forms.
type phrases []phrase

func (p phrases) lookup(option string) (string, bool) {
	for _, ph := range p {
		if ph.option == option {
			return ph.text, true
		}
	}
	return "", false
}

// matches returns the phrases for the selected options that are mapped, in
// selection order, keeping at most limit of them (limit <= 0 keeps all).
func (p phrases) matches(selected []string, limit int) []string {
	var out []string
	for _, s := range selected {
		if limit > 0 && len(out) == limit {
			break
		}
		if text, ok := p.lookup(s); ok {
			out = append(out, text)
		}
	}
	return out
}

func (p phrases) options() []string {
	out := make([]string, len(p))
	for i, ph := range p {
		out[i] = ph.option
	}
	return out
}

// nonEmpty drops blank entries from a selection.
func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Options lists the selectable values of a profile's form.
type Options struct {
	GradeLevels          []string
	Subjects             []string
	LearningGoals        []string
	CurrentUnderstanding []string
	AIRoles              []string
	InteractionStyles    []string
	FeedbackPreferences  []string
	ResponseFormats      []string
	LearningStyles       []string
	DetailLevels         []string
	TaskTypes            []string
	DefaultFormats       []string
	DefaultDetail        string
}

// OptionsFor returns the form options of a profile. Unknown profiles get an
// empty set.
func OptionsFor(p Profile) Options {
	switch p {
	case ProfileAdvanced:
		return Options{
			GradeLevels:          gradeContext.options(),
			Subjects:             append([]string(nil), advancedSubjects...),
			LearningGoals:        learningGoals.options(),
			CurrentUnderstanding: understandingContext.options(),
			AIRoles:              roleInstructions.options(),
			InteractionStyles:    styleInstructions.options(),
			FeedbackPreferences:  feedbackRequests.options(),
			ResponseFormats:      append([]string(nil), advancedFormats...),
			LearningStyles:       styleAdaptations.options(),
			DetailLevels:         detailInstructions.options(),
			DefaultFormats:       []string{advancedFormats[0], advancedFormats[1]},
			DefaultDetail:        "Moderate detail",
		}
	case ProfileBasic:
		return Options{
			GradeLevels:     append([]string(nil), basicGradeLevels...),
			Subjects:        append([]string(nil), basicSubjects...),
			ResponseFormats: append([]string(nil), basicFormats...),
			DetailLevels:    append([]string(nil), basicDetailLevels...),
			TaskTypes:       append(taskSentences.options(), taskOther),
			DefaultDetail:   basicDetailLevels[0],
		}
	}
	return Options{}
}
