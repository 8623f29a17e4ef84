package prompts

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAdvancedRequiredOnly(t *testing.T) {
	in := Input{
		AIRole:       "Patient tutor - guide me step by step",
		GradeLevel:   "High School (9-12)",
		Subject:      "Mathematics",
		LearningGoal: "Understand a concept I'm confused about",
		Topic:        "quadratic equations",
	}
	got, err := Build(ProfileAdvanced, in)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := "Act as my patient and supportive tutor. " +
		"I'm a high school student studying mathematics. " +
		"Please help me understand this concept by breaking it down clearly: quadratic equations"
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestAdvancedFallbacks(t *testing.T) {
	got := MustAssembler(ProfileAdvanced).Assemble(Input{})
	want := "Act as my educational assistant. I'm a student studying general studies. Please help me with: this topic"
	if got != want {
		t.Errorf("Assemble(empty) = %q, want %q", got, want)
	}

	got = MustAssembler(ProfileAdvanced).Assemble(Input{AIRole: "Pirate", GradeLevel: "Kindergarten", LearningGoal: "???", Topic: "x"})
	want = "Act as my educational assistant. I'm a student studying general studies. Please help me with: x"
	if got != want {
		t.Errorf("Assemble(unmapped) = %q, want %q", got, want)
	}
}

func TestAdvancedAllClauses(t *testing.T) {
	in := Input{
		AIRole:               "Socratic teacher - ask me questions to help me discover answers",
		GradeLevel:           "College/University",
		Subject:              "Science (Biology/Chemistry/Physics)",
		CurrentUnderstanding: "Basic understanding - know a little but confused",
		Background:           "  I read chapter 3.  ",
		LearningGoal:         "Prepare for a test or assignment",
		Topic:                "cellular respiration",
		InteractionStyle:     "Break complex topics into simple steps",
		ResponseFormats:      []string{"Step-by-step explanations", "Real-world examples and analogies", "Practice problems with solutions", "Summary of key points"},
		LearningStyles:       []string{"Visual (diagrams, charts, visual examples)", "Unknown style", "Social (discussion-style explanations)", "Logical (step-by-step reasoning, cause-and-effect)"},
		FeedbackPreferences:  []string{"Check my understanding along the way", "Point out common mistakes to avoid", "Bogus", "Provide memory tricks and mnemonics", "Help me make connections between topics"},
		FollowUp:             true,
		CommonMistakes:       true,
		CareerConnections:    true,
		DetailLevel:          "In-depth analysis",
	}
	got := MustAssembler(ProfileAdvanced).Assemble(in)

	want := []string{
		"Act as my Socratic teacher who guides learning through thoughtful questions.",
		"I'm a college student studying science (biology/chemistry/physics).",
		"I have basic understanding but I'm confused about key parts.",
		"Background: I read chapter 3.",
		"Please help me prepare for assessment by focusing on key concepts and likely questions: cellular respiration",
		"Break this complex topic into simple, manageable steps I can follow.",
		"Please structure your response to include: step-by-step explanations, real-world examples and analogies, practice problems with solutions, summary of key points.",
		"Please adapt your teaching to use visual descriptions and examples I can picture, explain things in a discussion-style format.",
		"Please also check my understanding at key points, and warn me about common mistakes students make, and include memory tricks and mnemonics.",
		followUpSentence,
		"Additionally, please highlight common mistakes students make with this topic, and explain how this connects to future careers.",
		"Provide an in-depth analysis with extensive examples, connections, and implications.",
	}
	if exp := strings.Join(want, " "); got != exp {
		t.Errorf("Assemble() =\n%q\nwant\n%q", got, exp)
	}
}

func TestAdvancedIsDeterministic(t *testing.T) {
	in := Input{
		Topic:           "fractions",
		ResponseFormats: []string{"Summary of key points", "Memory aids and mnemonics"},
		FollowUp:        true,
		ExamFocus:       true,
	}
	a := MustAssembler(ProfileAdvanced)
	first := a.Assemble(in)
	for range 10 {
		if got := a.Assemble(in); got != first {
			t.Fatalf("Assemble() changed between calls: %q vs %q", got, first)
		}
	}
}

func TestBasic(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{
			name: "explain with formats and basic detail",
			in: Input{
				Subject: "Mathematics", GradeLevel: "High School", TaskType: "Explain a concept",
				Topic: "derivatives", ResponseFormats: []string{"Examples", "Bullet points"}, DetailLevel: "Basic",
			},
			want: "I'm a high school student studying mathematics. Please explain derivatives in a way that's appropriate for my level. " +
				"Please include examples, bullet points in your response. Keep the explanation simple and concise.",
		},
		{
			name: "context and comprehensive",
			in: Input{
				Subject: "History", GradeLevel: "College", TaskType: "Solve a problem",
				Topic: "dating the treaty", Background: "We covered 1648.", DetailLevel: "Comprehensive",
			},
			want: "I'm a college student studying history. Context: We covered 1648. Help me solve this problem step by step: dating the treaty " +
				"Provide a thorough, detailed explanation with multiple examples.",
		},
		{
			name: "other task and middle detail",
			in:   Input{Subject: "Other", GradeLevel: "Graduate", TaskType: "Other", Topic: "my thesis", DetailLevel: "Detailed"},
			want: "I'm a graduate student studying other. Help me with my thesis.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(ProfileBasic, tt.in)
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildUnknownProfile(t *testing.T) {
	_, err := Build("fancy", Input{Topic: "x"})
	if !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("Build(fancy) error = %v, want ErrUnknownProfile", err)
	}
	if IsValidProfile("fancy") {
		t.Error("IsValidProfile(fancy) = true")
	}
	if !IsValidProfile("basic") || !IsValidProfile("advanced") {
		t.Error("built-in profiles should be valid")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		topic   string
		wantErr bool
	}{
		{"", true},
		{"   \n\t", true},
		{"photosynthesis", false},
	}
	for _, tt := range tests {
		err := Validate(Input{Topic: tt.topic})
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.topic, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrEmptyTopic) {
			t.Errorf("Validate(%q) error = %v, want ErrEmptyTopic", tt.topic, err)
		}
	}
}

func TestTruncateTopic(t *testing.T) {
	exact := strings.Repeat("a", 50)
	if got := TruncateTopic(exact); got != exact {
		t.Errorf("TruncateTopic(50 runes) = %q, want unchanged", got)
	}
	long := strings.Repeat("é", 51)
	want := strings.Repeat("é", 50) + "..."
	if got := TruncateTopic(long); got != want {
		t.Errorf("TruncateTopic(51 runes) = %q, want %q", got, want)
	}
}

func TestNewGeneratedPrompt(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gp := NewGeneratedPrompt("text", "Mathematics", strings.Repeat("x", 60), now)
	if gp.Topic != strings.Repeat("x", 50)+"..." {
		t.Errorf("Topic = %q", gp.Topic)
	}
	if !gp.CreatedAt.Equal(now) || gp.Subject != "Mathematics" || gp.Text != "text" {
		t.Errorf("unexpected prompt %+v", gp)
	}
}

func TestOptionsFor(t *testing.T) {
	adv := OptionsFor(ProfileAdvanced)
	if len(adv.AIRoles) != 6 || len(adv.LearningGoals) != 7 || len(adv.DetailLevels) != 4 {
		t.Errorf("unexpected advanced options: %+v", adv)
	}
	basic := OptionsFor(ProfileBasic)
	if len(basic.TaskTypes) != 7 || basic.TaskTypes[6] != "Other" {
		t.Errorf("TaskTypes = %v", basic.TaskTypes)
	}
	if got := OptionsFor("nope"); len(got.Subjects) != 0 {
		t.Errorf("OptionsFor(nope) = %+v, want empty", got)
	}
}
