package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/promptlab/internal/handler/views"
	appI18n "github.com/pavelanni/promptlab/internal/i18n"
	"github.com/pavelanni/promptlab/internal/prompts"
	"github.com/pavelanni/promptlab/internal/quality"
)

func profileParam(r *http.Request) (prompts.Profile, bool) {
	p := chi.URLParam(r, "profile")
	return prompts.Profile(p), prompts.IsValidProfile(p)
}

func (h *Handler) handleBuilderPage(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	render(w, r, http.StatusOK, views.BuilderPage(views.BuilderData{
		Profile: profile,
		Options: prompts.OptionsFor(profile),
	}))
}

// inputFromForm reads the builder form. Unchecked checkbox groups stay nil.
func inputFromForm(r *http.Request) prompts.Input {
	f := r.PostForm
	on := func(name string) bool { return f.Get(name) == "on" }
	return prompts.Input{
		GradeLevel:           f.Get(views.FieldGradeLevel),
		Subject:              f.Get(views.FieldSubject),
		LearningGoal:         f.Get(views.FieldLearningGoal),
		CurrentUnderstanding: f.Get(views.FieldUnderstanding),
		AIRole:               f.Get(views.FieldAIRole),
		InteractionStyle:     f.Get(views.FieldInteractionStyle),
		FeedbackPreferences:  f[views.FieldFeedback],
		Topic:                strings.TrimSpace(f.Get(views.FieldTopic)),
		Background:           strings.TrimSpace(f.Get(views.FieldBackground)),
		ResponseFormats:      f[views.FieldFormats],
		LearningStyles:       f[views.FieldLearningStyles],
		DetailLevel:          f.Get(views.FieldDetailLevel),
		TaskType:             f.Get(views.FieldTaskType),
		FollowUp:             on(views.FieldFollowUp),
		CommonMistakes:       on(views.FieldCommonMistakes),
		ExamFocus:            on(views.FieldExamFocus),
		CareerConnections:    on(views.FieldCareerConnections),
		PrerequisiteCheck:    on(views.FieldPrerequisiteCheck),
	}
}

func (h *Handler) handleBuild(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := inputFromForm(r)
	data := views.BuilderData{
		Profile: profile,
		Options: prompts.OptionsFor(profile),
		Input:   in,
	}
	if err := prompts.Validate(in); err != nil {
		data.Error = appI18n.T(r.Context(), "ErrTopicRequired")
		render(w, r, http.StatusUnprocessableEntity, views.BuilderPage(data))
		return
	}
	text, err := prompts.Build(profile, in)
	if err != nil {
		serverError(w, r, "build prompt", err)
		return
	}
	a := quality.Analyze(text)
	data.Generated = text
	data.Analysis = &a
	render(w, r, http.StatusOK, views.BuilderPage(data))
}

func (h *Handler) handleSavePrompt(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.FormValue(views.FieldText))
	if text == "" {
		http.Error(w, "prompt text is required", http.StatusBadRequest)
		return
	}
	p := prompts.NewGeneratedPrompt(text, r.FormValue(views.FieldSubject), r.FormValue(views.FieldTopic), time.Now().UTC())
	added, err := h.store.AddPrompt(sessionID(r), p)
	if err != nil {
		serverError(w, r, "save prompt", err)
		return
	}
	n := "PromptExists"
	if added {
		n = "PromptSaved"
	}
	h.redirect(w, r, "/saved", url.Values{"notice": {n}})
}
