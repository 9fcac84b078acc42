package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dverney/todo-api/internal/repo"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error body with an "error" category (the standard
// status text) and a human "message".
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

// JSONValidationError sends a 4xx error body with field-level details under "fields".
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// RepoError maps a repository error to a response. Domain errors (NotFound,
// AlreadyExists) pass through with their own status; anything else is a 500
// with a generic message, and the real error goes to the log only.
func RepoError(w http.ResponseWriter, err error, notFoundMessage string) {
	var exists *repo.AlreadyExistsError
	switch {
	case errors.Is(err, repo.ErrNotFound):
		JSONError(w, notFoundMessage, http.StatusNotFound)
	case errors.As(err, &exists):
		JSONError(w, exists.Error(), http.StatusConflict)
	case errors.Is(err, repo.ErrInvalidInput):
		JSONError(w, "invalid input", http.StatusBadRequest)
	default:
		slog.Error("storage failure", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
