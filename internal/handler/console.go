package handler

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/pavelanni/promptlab/internal/handler/views"
	appI18n "github.com/pavelanni/promptlab/internal/i18n"
	"github.com/pavelanni/promptlab/internal/llm"
	"github.com/pavelanni/promptlab/internal/model"
	"github.com/pavelanni/promptlab/internal/practice"
	"github.com/pavelanni/promptlab/internal/simulator"
)

const huggingFaceID = "huggingface"

func (h *Handler) consoleData(r *http.Request) (views.ConsoleData, error) {
	history, err := h.store.ListTestResults(sessionID(r))
	if err != nil {
		return views.ConsoleData{}, err
	}
	d := views.ConsoleData{
		Mode:     model.ModeSimulate,
		Subjects: simulator.Subjects,
		History:  history,
		Ratings:  model.Ratings,
	}
	for _, m := range practice.Modes {
		if m == model.ModeLLM && h.gateway == nil {
			continue
		}
		d.Modes = append(d.Modes, views.ModeOption{Value: m, Label: practice.ModeLabel(m)})
	}
	if h.gateway != nil {
		for _, p := range h.gateway.Providers() {
			d.Providers = append(d.Providers, views.ProviderOption{
				ID:           p.ID(),
				Name:         p.Name(),
				DefaultModel: p.DefaultModel(),
				NeedsKey:     p.RequiresCredential(),
				HasKey:       h.gateway.HasCredential(p.ID()),
			})
		}
	}
	return d, nil
}

func (h *Handler) handleConsolePage(w http.ResponseWriter, r *http.Request) {
	d, err := h.consoleData(r)
	if err != nil {
		serverError(w, r, "list test results", err)
		return
	}
	q := r.URL.Query()
	d.Prompt = q.Get(views.FieldPrompt)
	if m := model.Mode(q.Get(views.FieldMode)); slices.Contains(practice.Modes, m) {
		d.Mode = m
	}
	d.SubjectHint = q.Get(views.FieldSubjectHint)
	d.Provider = q.Get(views.FieldProvider)
	d.Model = q.Get(views.FieldModel)
	if d.Prompt != "" {
		d.Recommended = llm.Recommend(d.Prompt)
	}
	d.Notice = notice(r)
	render(w, r, http.StatusOK, views.ConsolePage(d))
}

func (h *Handler) handleRunTest(w http.ResponseWriter, r *http.Request) {
	req := practice.Request{
		Prompt:      r.FormValue(views.FieldPrompt),
		Mode:        model.Mode(r.FormValue(views.FieldMode)),
		SubjectHint: r.FormValue(views.FieldSubjectHint),
		Provider:    r.FormValue(views.FieldProvider),
		Model:       strings.TrimSpace(r.FormValue(views.FieldModel)),
		Credential:  r.FormValue(views.FieldAPIKey),
	}
	if req.Mode == model.ModeLLM && h.gateway != nil {
		if p, ok := h.gateway.Provider(req.Provider); ok && req.Model == "" {
			req.Model = p.DefaultModel()
		}
		if req.Provider == huggingFaceID && r.FormValue(views.FieldEnhance) == "on" {
			req.Prompt = llm.EnhancePrompt(req.Prompt, req.SubjectHint)
		}
	}

	res, err := h.runner.Run(r.Context(), req)
	if err != nil {
		d, derr := h.consoleData(r)
		if derr != nil {
			serverError(w, r, "list test results", derr)
			return
		}
		d.Prompt, d.Mode, d.SubjectHint, d.Provider, d.Model = req.Prompt, req.Mode, req.SubjectHint, req.Provider, req.Model
		switch {
		case errors.Is(err, practice.ErrEmptyPrompt):
			d.Error = appI18n.T(r.Context(), "ErrPromptRequired")
			render(w, r, http.StatusUnprocessableEntity, views.ConsolePage(d))
		case errors.Is(err, practice.ErrUnknownMode):
			d.Error = appI18n.T(r.Context(), "ErrUnknownMode")
			render(w, r, http.StatusBadRequest, views.ConsolePage(d))
		default:
			serverError(w, r, "run test", err)
		}
		return
	}

	if _, err := h.store.AddTestResult(sessionID(r), res); err != nil {
		serverError(w, r, "store test result", err)
		return
	}
	q := url.Values{views.FieldMode: {string(req.Mode)}}
	if req.Mode == model.ModeLLM {
		q.Set(views.FieldProvider, req.Provider)
		q.Set(views.FieldModel, req.Model)
	}
	if req.SubjectHint != "" {
		q.Set(views.FieldSubjectHint, req.SubjectHint)
	}
	h.redirect(w, r, "/console", q)
}

func (h *Handler) handleRateResult(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.FormValue(views.FieldResultID), 10, 64)
	if err != nil {
		http.Error(w, "invalid result ID", http.StatusBadRequest)
		return
	}
	err = h.store.RateTestResult(sessionID(r), id, r.FormValue(views.FieldRating), strings.TrimSpace(r.FormValue(views.FieldFeedbackTxt)))
	if err != nil {
		if status := errStatus(err); status != http.StatusInternalServerError {
			http.Error(w, err.Error(), status)
			return
		}
		serverError(w, r, "rate test result", err)
		return
	}
	h.redirect(w, r, "/console", url.Values{"notice": {"RatingSaved"}})
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearTestResults(sessionID(r)); err != nil {
		serverError(w, r, "clear test results", err)
		return
	}
	h.redirect(w, r, "/console", url.Values{"notice": {"HistoryCleared"}})
}
