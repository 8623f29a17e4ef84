package handler

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/pavelanni/promptlab/internal/model"
	"github.com/pavelanni/promptlab/internal/quality"
)

const maxAPIBody = 64 << 10

type analyzeRequest struct {
	Prompt string `json:"prompt"`
}

type analyzeResponse struct {
	Analysis        model.QualityAnalysis `json:"analysis"`
	Band            quality.Band          `json:"band"`
	QuickAssessment string                `json:"quick_assessment"`
}

type apiError struct {
	Error string `json:"error"`
}

type catalogSubject struct {
	Name      string                 `json:"name"`
	Templates []model.PromptTemplate `json:"templates"`
}

type catalogResponse struct {
	Subjects   []catalogSubject  `json:"subjects"`
	Techniques []model.Technique `json:"techniques"`
	Tips       []model.Tip       `json:"tips"`
}

type providerInfo struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	DefaultModel       string `json:"default_model"`
	RequiresCredential bool   `json:"requires_credential"`
	Configured         bool   `json:"configured"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}

// handleAPIAnalyze scores a prompt. Only JSON bodies are accepted, which keeps
// plain cross-site form posts out without a CSRF token.
func (h *Handler) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		writeJSON(w, http.StatusUnsupportedMediaType, apiError{Error: "content type must be application/json"})
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "prompt is required"})
		return
	}
	a := quality.Analyze(req.Prompt)
	writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis:        a,
		Band:            quality.Level(a.OverallScore),
		QuickAssessment: quality.QuickAssessment(a),
	})
}

func (h *Handler) handleAPICatalog(w http.ResponseWriter, r *http.Request) {
	resp := catalogResponse{
		Techniques: h.catalog.Techniques(),
		Tips:       h.catalog.Tips(),
	}
	for _, s := range h.catalog.Subjects() {
		resp.Subjects = append(resp.Subjects, catalogSubject{Name: s, Templates: h.catalog.Templates(s)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAPIProviders(w http.ResponseWriter, r *http.Request) {
	out := []providerInfo{}
	if h.gateway != nil {
		for _, p := range h.gateway.Providers() {
			out = append(out, providerInfo{
				ID:                 p.ID(),
				Name:               p.Name(),
				DefaultModel:       p.DefaultModel(),
				RequiresCredential: p.RequiresCredential(),
				Configured:         !p.RequiresCredential() || h.gateway.HasCredential(p.ID()),
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}
