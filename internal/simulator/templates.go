package simulator

const (
	subjectMath    = "math"
	subjectScience = "science"
	subjectEnglish = "english"
	subjectHistory = "history"
	subjectGeneral = "general"
)

// Subjects lists the subjects that have their own response pools, in
// detection priority order followed by the general fallback.
var Subjects = []string{subjectMath, subjectScience, subjectEnglish, subjectHistory, subjectGeneral}

type pools struct {
	good []string
	poor []string
}

var responseTemplates = map[string]pools{
	subjectMath: {
		good: []string{
			"I'll help you solve this step by step. First, let me identify what type of problem this is...",
			"Great question! Let me break this down into manageable steps for you...",
			"I can see you're working on [topic]. Here's how I'd approach this problem...",
		},
		poor: []string{
			"This is a math problem. The answer depends on what you're trying to solve.",
			"I need more specific information about what you want to learn.",
			"Math can be tricky. What specific concept are you struggling with?",
		},
	},
	subjectScience: {
		good: []string{
			"Excellent question! This concept is fundamental to understanding [topic]. Let me explain...",
			"I'll help you understand this by connecting it to what you already know...",
			"This is a great way to think about [concept]. Here's how it works...",
		},
		poor: []string{
			"Science is a broad field. Can you be more specific about what you want to know?",
			"That's an interesting topic. What particular aspect interests you?",
			"I'd be happy to help, but I need more details about your question.",
		},
	},
	subjectEnglish: {
		good: []string{
			"I can help you analyze this text. Let me guide you through the key literary elements...",
			"Great thesis statement! Here's how I'd structure your essay to support this argument...",
			"This writing shows good understanding. Here are some suggestions to make it even stronger...",
		},
		poor: []string{
			"Writing and literature analysis can be complex. What specific help do you need?",
			"There are many aspects to consider in literature. Which one interests you most?",
			"I'd like to help with your writing. Can you share more details about your assignment?",
		},
	},
	subjectHistory: {
		good: []string{
			"This historical period is fascinating! Let me help you understand the key causes and effects...",
			"You're asking great analytical questions. Here's how historians typically approach this topic...",
			"I'll help you connect these historical events to their broader context...",
		},
		poor: []string{
			"History is complex with many interconnected events. What specific period interests you?",
			"That's a broad historical topic. Which aspect would you like to explore?",
			"Historical analysis requires focus. What particular question are you investigating?",
		},
	},
	subjectGeneral: {
		good: []string{
			"I appreciate how clearly you've explained your learning goals. Here's how I can help...",
			"Your question shows good critical thinking. Let me guide you through this step by step...",
			"This is exactly the kind of question that leads to deep learning. Here's my approach...",
		},
		poor: []string{
			"I'd be happy to help you learn! Could you provide more specific details about what you need?",
			"Learning is most effective when we're specific about our goals. What would you like to focus on?",
			"I want to give you the best help possible. Can you tell me more about your current understanding?",
		},
	},
}

// subjectKeywords is checked in order; the first subject with a hit wins.
var subjectKeywords = []struct {
	subject  string
	keywords []string
}{
	{subjectMath, []string{"math", "equation", "solve", "calculate", "algebra", "geometry"}},
	{subjectScience, []string{"science", "biology", "chemistry", "physics", "experiment"}},
	{subjectEnglish, []string{"essay", "writing", "literature", "analyze", "poem", "story"}},
	{subjectHistory, []string{"history", "historical", "war", "revolution", "century"}},
}

var topicPhrases = map[string]string{
	subjectMath:    "mathematical concepts",
	subjectScience: "scientific principles",
	subjectEnglish: "literary analysis",
	subjectHistory: "historical events",
	subjectGeneral: "this topic",
}

const fallbackTopic = "this subject"

var knownConcepts = []string{"photosynthesis", "algebra", "democracy", "evolution", "gravity", "metaphor"}

const fallbackConcept = "the concept you're asking about"

var educationalContent = map[string]string{
	subjectMath:    "Remember to always show your work step by step, and don't hesitate to ask if you need clarification on any part of the solution.",
	subjectScience: "Science is all about understanding the 'why' behind phenomena. Try to connect this concept to real-world examples you've observed.",
	subjectEnglish: "When analyzing literature, always support your interpretations with specific evidence from the text.",
	subjectHistory: "Consider the historical context and multiple perspectives when studying historical events.",
	subjectGeneral: "Remember that learning is most effective when you actively engage with the material and ask follow-up questions.",
}

const guidanceHeader = "To get better responses in the future, try to:"

const maxGuidance = 3
