package prompts

import (
	"fmt"
	"strings"
)

var basicSubjects = []string{"Mathematics", "Science", "English/Literature", "History", "Other"}

var basicGradeLevels = []string{"Elementary", "Middle School", "High School", "College", "Graduate"}

var basicFormats = []string{
	"Step-by-step explanation",
	"Bullet points",
	"Examples",
	"Diagrams/Visual aids",
	"Practice problems",
	"Summary",
}

var basicDetailLevels = []string{"Basic", "Moderate", "Detailed", "Comprehensive"}

// taskSentences holds fmt patterns taking the topic.
var taskSentences = phrases{
	{"Explain a concept", "Please explain %s in a way that's appropriate for my level."},
	{"Solve a problem", "Help me solve this problem step by step: %s"},
	{"Review my work", "Please review my work on %s and provide constructive feedback."},
	{"Create study materials", "Create study materials for %s that will help me learn effectively."},
	{"Generate practice questions", "Generate practice questions about %s with varying difficulty levels."},
	{"Analyze text", "Help me analyze %s by identifying key themes, concepts, or arguments."},
}

const taskOther = "Other"

var basicClauses = []clause{
	basicContextClause,
	basicBackgroundClause,
	taskClause,
	basicFormatClause,
	basicDetailClause,
}

func basicContextClause(in Input) (string, bool) {
	subject := subjectOrDefault(in.Subject)
	grade := strings.ToLower(strings.TrimSpace(in.GradeLevel))
	if grade == "" {
		return fmt.Sprintf("I'm a student studying %s.", subject), true
	}
	return fmt.Sprintf("I'm a %s student studying %s.", grade, subject), true
}

func basicBackgroundClause(in Input) (string, bool) {
	bg := strings.TrimSpace(in.Background)
	if bg == "" {
		return "", false
	}
	return "Context: " + bg, true
}

func taskClause(in Input) (string, bool) {
	pattern, ok := taskSentences.lookup(in.TaskType)
	if !ok {
		pattern = "Help me with %s."
	}
	return fmt.Sprintf(pattern, in.Topic), true
}

func basicFormatClause(in Input) (string, bool) {
	formats := nonEmpty(in.ResponseFormats)
	if len(formats) == 0 {
		return "", false
	}
	return "Please include " + strings.ToLower(strings.Join(formats, ", ")) + " in your response.", true
}

func basicDetailClause(in Input) (string, bool) {
	switch in.DetailLevel {
	case "Basic":
		return "Keep the explanation simple and concise.", true
	case "Comprehensive":
		return "Provide a thorough, detailed explanation with multiple examples.", true
	}
	return "", false
}
