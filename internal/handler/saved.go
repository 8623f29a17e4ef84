package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pavelanni/promptlab/internal/handler/views"
)

func (h *Handler) handleSavedPage(w http.ResponseWriter, r *http.Request) {
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
	render(w, r, http.StatusOK, views.SavedPage(views.SavedData{
		Prompts:   saved,
		Favorites: favs,
		Notice:    notice(r),
	}))
}

func (h *Handler) handleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	h.deleteOwned(w, r, h.store.DeletePrompt)
}

func (h *Handler) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	h.deleteOwned(w, r, h.store.DeleteFavorite)
}

func (h *Handler) deleteOwned(w http.ResponseWriter, r *http.Request, del func(sessionID string, id int64) error) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid ID", http.StatusBadRequest)
		return
	}
	if err := del(sessionID(r), id); err != nil {
		if status := errStatus(err); status != http.StatusInternalServerError {
			http.Error(w, err.Error(), status)
			return
		}
		serverError(w, r, "delete", err)
		return
	}
	h.redirect(w, r, "/saved", url.Values{"notice": {"Deleted"}})
}

// handleExport downloads everything the session owns as JSON.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	exp, err := h.store.ExportSession(sessionID(r))
	if err != nil {
		serverError(w, r, "export session", err)
		return
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		serverError(w, r, "marshal export", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="promptlab-session.json"`)
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n"))
}
