package handlers

import (
	"net/http"
	"strconv"

	"github.com/dverney/todo-api/internal/models"
	"github.com/dverney/todo-api/internal/repo"
)

// AuditHandler serves the caller's own audit trail.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// List returns the caller's recent audit entries. Query: limit (default 50, max 200), offset (default 0).
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := h.Repo.ListByUser(r.Context(), user.ID, limit, offset)
	if err != nil {
		RepoError(w, err, "audit entry not found")
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}
