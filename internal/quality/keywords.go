package quality

// Keyword tables for the lexical heuristic. Entries are matched as lower-case
// substrings of the lower-cased prompt; there is no tokenization, stemming or
// negation handling, so "don't explain" still counts as "explain".

var specificityKeywords = []string{
	"explain", "analyze", "compare", "solve", "step by step",
	"example", "specific", "particular", "exactly", "precisely",
}

var subjectKeywords = []string{
	"math", "science", "history", "english", "biology", "chemistry", "physics",
}

var contextIndicators = []string{
	"i'm a", "grade", "level", "student", "learning", "studying",
	"understand", "know", "background", "currently", "previously",
}

var gradeLevels = []string{
	"elementary", "middle school", "high school", "college", "graduate",
}

var clarityIndicators = []string{
	"?", "help me", "can you", "please", "i need", "how do i",
	"what is", "why does", "when should", "where can",
}

var educationalKeywords = []string{
	"learn", "understand", "practice", "study", "explain", "teach",
	"concept", "theory", "principle", "method", "process", "why",
	"how", "what if", "compare", "contrast", "analyze", "evaluate",
}

var explanationRequests = []string{
	"explain", "teach me", "help me understand", "walk me through",
}

const (
	suggestSpecificity = "Be more specific about what you want to learn or accomplish"
	suggestContext     = "Provide context about your learning level or background knowledge"
	suggestClarity     = "Try to structure your question more clearly with specific details"
	suggestEducational = "Focus on learning and understanding rather than just getting answers"
	suggestExpand      = "Consider expanding your prompt with more details and context"
	suggestQuestion    = "Frame your request as a clear question"
)
