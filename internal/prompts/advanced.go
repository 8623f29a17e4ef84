package prompts

import (
	"fmt"
	"strings"
)

var roleInstructions = phrases{
	{"Patient tutor - guide me step by step", "Act as my patient and supportive tutor"},
	{"Socratic teacher - ask me questions to help me discover answers", "Act as my Socratic teacher who guides learning through thoughtful questions"},
	{"Study coach - help me develop learning strategies", "Act as my study coach and learning strategist"},
	{"Writing mentor - provide feedback and suggestions", "Act as my writing mentor and editor"},
	{"Research assistant - help me find and organize information", "Act as my research assistant and information organizer"},
	{"Practice partner - quiz me and give feedback", "Act as my practice partner and learning assessor"},
}

var gradeContext = phrases{
	{"Elementary (K-5)", "elementary school student"},
	{"Middle School (6-8)", "middle school student"},
	{"High School (9-12)", "high school student"},
	{"College/University", "college student"},
	{"Graduate School", "graduate student"},
}

var advancedSubjects = []string{
	"Mathematics",
	"Science (Biology/Chemistry/Physics)",
	"English/Literature",
	"History/Social Studies",
	"Study Skills & Test Prep",
	"Other",
}

var understandingContext = phrases{
	{"Complete beginner - never studied this before", "I'm completely new to this topic and have never studied it before"},
	{"Basic understanding - know a little but confused", "I have basic understanding but I'm confused about key parts"},
	{"Moderate understanding - get the basics but struggle with applications", "I understand the basics but struggle with applying the concepts"},
	{"Good understanding - just need help with specific parts", "I have good overall understanding but need help with specific aspects"},
	{"Advanced - want to deepen or extend my knowledge", "I have advanced understanding and want to deepen my knowledge further"},
}

var learningGoals = phrases{
	{"Understand a concept I'm confused about", "Please help me understand this concept by breaking it down clearly"},
	{"Get help solving problems step-by-step", "Please guide me through solving this step-by-step, letting me try each step"},
	{"Prepare for a test or assignment", "Please help me prepare for assessment by focusing on key concepts and likely questions"},
	{"Connect ideas to real-world applications", "Please help me see how this connects to real-world situations and applications"},
	{"Improve my study techniques", "Please help me develop better study strategies for this material"},
	{"Analyze and interpret information", "Please guide me through analyzing and interpreting this information"},
	{"Get feedback on my work", "Please review my work and provide constructive feedback for improvement"},
}

var styleInstructions = phrases{
	{"Guide me to discover answers myself", "Instead of giving me direct answers, guide me to discover the solutions through questions and hints"},
	{"Explain clearly then let me practice", "First explain the concept clearly, then give me practice opportunities to apply it"},
	{"Show examples then help me try similar problems", "Show me examples first, then help me work through similar problems on my own"},
	{"Break complex topics into simple steps", "Break this complex topic into simple, manageable steps I can follow"},
	{"Connect new ideas to what I already know", "Help me connect these new ideas to concepts I already understand"},
	{"Help me see real-world applications", "Show me concrete examples of how this applies to real-world situations"},
}

var advancedFormats = []string{
	"Step-by-step explanations",
	"Real-world examples and analogies",
	"Practice problems with solutions",
	"Visual descriptions or diagrams",
	"Memory aids and mnemonics",
	"Summary of key points",
}

var styleAdaptations = phrases{
	{"Visual (diagrams, charts, visual examples)", "use visual descriptions and examples I can picture"},
	{"Auditory (explanations I can 'hear' in my head)", "explain things in a conversational way I can hear in my mind"},
	{"Kinesthetic (hands-on examples, real-world applications)", "include hands-on examples and real-world applications"},
	{"Reading/Writing (text-based explanations, note-taking)", "provide clear text explanations that are good for note-taking"},
	{"Social (discussion-style explanations)", "explain things in a discussion-style format"},
	{"Logical (step-by-step reasoning, cause-and-effect)", "use step-by-step logical reasoning and show cause-and-effect relationships"},
}

var feedbackRequests = phrases{
	{"Check my understanding along the way", "check my understanding at key points"},
	{"Point out common mistakes to avoid", "warn me about common mistakes students make"},
	{"Suggest study strategies that match my learning style", "suggest study strategies that work for my learning style"},
	{"Provide memory tricks and mnemonics", "include memory tricks and mnemonics"},
	{"Give me practice problems at different difficulty levels", "provide practice problems at different difficulty levels"},
	{"Help me make connections between topics", "help me see connections to other topics I've learned"},
}

var detailInstructions = phrases{
	{"Brief overview", "Keep your explanation concise and focused on the most important points"},
	{"Moderate detail", "Provide a moderately detailed explanation with key examples"},
	{"Comprehensive explanation", "Give a comprehensive explanation with multiple examples and detailed reasoning"},
	{"In-depth analysis", "Provide an in-depth analysis with extensive examples, connections, and implications"},
}

const followUpSentence = "Ask me follow-up questions to ensure I truly understand the material."

const (
	maxLearningStyles = 2
	maxFeedback       = 3
)

var advancedClauses = []clause{
	roleClause,
	studentContextClause,
	understandingClause,
	backgroundClause,
	goalClause,
	interactionClause,
	formatClause,
	learningStyleClause,
	feedbackClause,
	followUpClause,
	specialClause,
	detailClause,
}

func roleClause(in Input) (string, bool) {
	role, ok := roleInstructions.lookup(in.AIRole)
	if !ok {
		role = "Act as my educational assistant"
	}
	return role + ".", true
}

func studentContextClause(in Input) (string, bool) {
	level, ok := gradeContext.lookup(in.GradeLevel)
	if !ok {
		level = "student"
	}
	return fmt.Sprintf("I'm a %s studying %s.", level, subjectOrDefault(in.Subject)), true
}

func subjectOrDefault(subject string) string {
	if s := strings.TrimSpace(subject); s != "" {
		return strings.ToLower(s)
	}
	return "general studies"
}

func understandingClause(in Input) (string, bool) {
	return sentence(understandingContext.lookup(in.CurrentUnderstanding))
}

func backgroundClause(in Input) (string, bool) {
	bg := strings.TrimSpace(in.Background)
	if bg == "" {
		return "", false
	}
	return "Background: " + bg, true
}

func goalClause(in Input) (string, bool) {
	goal, ok := learningGoals.lookup(in.LearningGoal)
	if !ok {
		goal = "Please help me with"
	}
	topic := in.Topic
	if strings.TrimSpace(topic) == "" {
		topic = "this topic"
	}
	return goal + ": " + topic, true
}

func interactionClause(in Input) (string, bool) {
	return sentence(styleInstructions.lookup(in.InteractionStyle))
}

func formatClause(in Input) (string, bool) {
	formats := nonEmpty(in.ResponseFormats)
	if len(formats) == 0 {
		return "", false
	}
	return "Please structure your response to include: " + strings.ToLower(strings.Join(formats, ", ")) + ".", true
}

func learningStyleClause(in Input) (string, bool) {
	matched := styleAdaptations.matches(in.LearningStyles, maxLearningStyles)
	if len(matched) == 0 {
		return "", false
	}
	return "Please adapt your teaching to " + strings.Join(matched, ", ") + ".", true
}

func feedbackClause(in Input) (string, bool) {
	matched := feedbackRequests.matches(in.FeedbackPreferences, maxFeedback)
	if len(matched) == 0 {
		return "", false
	}
	return "Please also " + strings.Join(matched, ", and ") + ".", true
}

func followUpClause(in Input) (string, bool) {
	return followUpSentence, in.FollowUp
}

func specialClause(in Input) (string, bool) {
	var requests []string
	if in.CommonMistakes {
		requests = append(requests, "highlight common mistakes students make with this topic")
	}
	if in.ExamFocus {
		requests = append(requests, "focus on aspects most likely to appear on tests")
	}
	if in.CareerConnections {
		requests = append(requests, "explain how this connects to future careers")
	}
	if in.PrerequisiteCheck {
		requests = append(requests, "check if I have the prerequisite knowledge needed")
	}
	if len(requests) == 0 {
		return "", false
	}
	return "Additionally, please " + strings.Join(requests, ", and ") + ".", true
}

func detailClause(in Input) (string, bool) {
	return sentence(detailInstructions.lookup(in.DetailLevel))
}

// sentence terminates a mapped phrase with a period.
func sentence(text string, ok bool) (string, bool) {
	if !ok {
		return "", false
	}
	return text + ".", true
}
