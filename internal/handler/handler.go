package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pavelanni/promptlab/internal/catalog"
	"github.com/pavelanni/promptlab/internal/handler/views"
	appI18n "github.com/pavelanni/promptlab/internal/i18n"
	"github.com/pavelanni/promptlab/internal/llm"
	"github.com/pavelanni/promptlab/internal/model"
	"github.com/pavelanni/promptlab/internal/practice"
	"github.com/pavelanni/promptlab/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store   *store.Store
	catalog *catalog.Catalog
	runner  *practice.Runner
	gateway *llm.Gateway
	config  model.AppConfig
}

// New creates a new Handler. gateway may be nil, which hides the live mode.
func New(s *store.Store, c *catalog.Catalog, r *practice.Runner, g *llm.Gateway, cfg model.AppConfig) *Handler {
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	if cfg.BasePath != "" && !strings.HasPrefix(cfg.BasePath, "/") {
		cfg.BasePath = "/" + cfg.BasePath
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = store.DefaultSessionTTL
	}
	return &Handler{store: s, catalog: c, runner: r, gateway: g, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", h.handleAPIAnalyze)
		r.Get("/catalog", h.handleAPICatalog)
		r.Get("/providers", h.handleAPIProviders)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.Use(h.csrfMiddleware)

		r.Get("/", h.handleIndex)
		r.Get("/subjects", h.handleSubjects)
		r.Post("/subjects/favorite", h.handleAddFavorite)
		r.Get("/techniques", h.handleTechniques)
		r.Get("/tips", h.handleTips)

		r.Get("/builder/{profile}", h.handleBuilderPage)
		r.Post("/builder/{profile}", h.handleBuild)
		r.Post("/builder/save", h.handleSavePrompt)

		r.Get("/console", h.handleConsolePage)
		r.Post("/console", h.handleRunTest)
		r.Post("/console/rate", h.handleRateResult)
		r.Post("/console/clear", h.handleClearHistory)

		r.Get("/saved", h.handleSavedPage)
		r.Get("/saved/export", h.handleExport)
		r.Post("/saved/prompts/{id}/delete", h.handleDeletePrompt)
		r.Post("/saved/favorites/{id}/delete", h.handleDeleteFavorite)

		r.Post("/session/reset", h.handleResetSession)
	})
}

// Router builds the full HTTP handler, mounted under the configured base path.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware())

	if bp := h.config.BasePath; bp != "" {
		r.Route(bp, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(bp, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, bp+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}
	return r
}

// BasePathMiddleware makes the deployment prefix available to views.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "path", r.URL.Path, "error", err)
	}
}

func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, views.ErrorPage(appI18n.T(r.Context(), "NotFoundTitle"), appI18n.T(r.Context(), "NotFound")))
}

// noticeIDs are the flash messages a redirect may ask a page to show.
var noticeIDs = []string{"PromptSaved", "PromptExists", "FavoriteAdded", "FavoriteExists", "Deleted", "HistoryCleared", "RatingSaved"}

func notice(r *http.Request) string {
	id := r.URL.Query().Get("notice")
	if !slices.Contains(noticeIDs, id) {
		return ""
	}
	return appI18n.T(r.Context(), id)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, p string, q url.Values) {
	target := h.path(p)
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	saved, err := h.store.ListPrompts(sid)
	if err != nil {
		serverError(w, r, "list prompts", err)
		return
	}
	favs, err := h.store.ListFavorites(sid)
	if err != nil {
		serverError(w, r, "list favorites", err)
		return
	}
	results, err := h.store.ListTestResults(sid)
	if err != nil {
		serverError(w, r, "list test results", err)
		return
	}

	stats := views.HomeStats{
		Subjects:   len(h.catalog.Subjects()),
		Techniques: len(h.catalog.Techniques()),
		Saved:      len(saved),
		Favorites:  len(favs),
		Tests:      len(results),
	}
	for _, s := range h.catalog.Subjects() {
		stats.Templates += len(h.catalog.Templates(s))
	}
	render(w, r, http.StatusOK, views.HomePage(stats))
}

func (h *Handler) handleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects := h.catalog.Subjects()
	selected := r.URL.Query().Get("subject")
	if !slices.Contains(subjects, selected) && len(subjects) > 0 {
		selected = subjects[0]
	}
	render(w, r, http.StatusOK, views.SubjectsPage(views.SubjectsData{
		Subjects:  subjects,
		Selected:  selected,
		Templates: h.catalog.Templates(selected),
		Notice:    notice(r),
	}))
}

func (h *Handler) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	subject := r.FormValue(views.FieldSubject)
	tpl, ok := h.catalog.Template(subject, r.FormValue("category"))
	if !ok {
		h.notFound(w, r)
		return
	}
	added, err := h.store.AddFavorite(sessionID(r), model.Favorite{
		Subject:  tpl.Subject,
		Category: tpl.Category,
		Prompt:   tpl.Text,
	})
	if err != nil {
		serverError(w, r, "add favorite", err)
		return
	}
	n := "FavoriteExists"
	if added {
		n = "FavoriteAdded"
	}
	h.redirect(w, r, "/subjects", url.Values{"subject": {subject}, "notice": {n}})
}

func (h *Handler) handleTechniques(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, views.TechniquesPage(h.catalog.Techniques()))
}

func (h *Handler) handleTips(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, views.TipsPage(h.catalog.Tips()))
}

// errStatus maps store errors to HTTP statuses for form posts.
func errStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidRating):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
