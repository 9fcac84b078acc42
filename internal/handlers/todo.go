package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dverney/todo-api/internal/middleware"
	"github.com/dverney/todo-api/internal/models"
	"github.com/dverney/todo-api/internal/repo"
	"github.com/dverney/todo-api/internal/validate"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ==========================
// Todo Handler
// ==========================
type TodoHandler struct {
	Repo  *repo.TodoRepo
	Audit *repo.AuditRepo
}

// currentUser resolves the authenticated caller placed in the context by the
// Authenticator middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "not authenticated", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

// todoID parses the {id} URL parameter.
func todoID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		JSONError(w, "invalid todo id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *TodoHandler) audit(r *http.Request, userID int, action string, todoID int) {
	if h.Audit != nil {
		_ = h.Audit.Log(r.Context(), userID, action, "todo", todoID, "")
	}
}

// ==========================
// List Todos
// ==========================
// Query: completed? (true/false), search?, page (default 1), page_size (default 10, max 100).
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	var completed *bool
	if c := q.Get("completed"); c != "" {
		val, err := strconv.ParseBool(c)
		if err != nil {
			JSONError(w, "completed must be true or false", http.StatusBadRequest)
			return
		}
		completed = &val
	}

	var search *string
	if s := q.Get("search"); s != "" {
		search = &s
	}

	page := 1
	if p := q.Get("page"); p != "" {
		val, err := strconv.Atoi(p)
		if err != nil || val < 1 {
			JSONError(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		page = val
	}
	pageSize := defaultPageSize
	if ps := q.Get("page_size"); ps != "" {
		val, err := strconv.Atoi(ps)
		if err != nil || val < 1 || val > maxPageSize {
			JSONError(w, "page_size must be between 1 and 100", http.StatusBadRequest)
			return
		}
		pageSize = val
	}

	result, err := h.Repo.List(r.Context(), user.ID, completed, search, page, pageSize)
	if err != nil {
		RepoError(w, err, "todo not found")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ==========================
// Todo Stats
// ==========================
func (h *TodoHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.Repo.Stats(r.Context(), user.ID)
	if err != nil {
		RepoError(w, err, "todo not found")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// ==========================
// Get Todo
// ==========================
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	todo, err := h.Repo.Get(r.Context(), id, user.ID)
	if err != nil {
		RepoError(w, err, "todo not found")
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// ==========================
// Create Todo
// ==========================
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	title, msg := validate.Title(input.Title)
	if msg != "" {
		fields["title"] = msg
	}
	description, msg := validate.Description(input.Description)
	if msg != "" {
		fields["description"] = msg
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	todo, err := h.Repo.Create(r.Context(), user.ID, title, description)
	if err != nil {
		RepoError(w, err, "todo not found")
		return
	}

	h.audit(r, user.ID, "create", todo.ID)
	writeJSON(w, http.StatusCreated, todo)
}

// ==========================
// Replace Todo (PUT)
// ==========================
// All mutable fields are overwritten. An omitted completed field takes its
// schema default (false), not the previous value.
func (h *TodoHandler) Replace(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	title, msg := validate.Title(input.Title)
	if msg != "" {
		fields["title"] = msg
	}
	description, msg := validate.Description(input.Description)
	if msg != "" {
		fields["description"] = msg
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	todo, err := h.Repo.Replace(r.Context(), id, user.ID, title, description, input.Completed)
	if err != nil {
		RepoError(w, err, "todo not found")
		return
	}

	h.audit(r, user.ID, "replace", todo.ID)
	writeJSON(w, http.StatusOK, todo)
}

// ==========================
// Update Todo (PATCH)
// ==========================
// Only fields present in the body are changed. A description that trims to
// empty normalizes to absent and is treated as not provided.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	var title *string
	if input.Title != nil {
		trimmed, msg := validate.Title(*input.Title)
		if msg != "" {
			fields["title"] = msg
		} else {
			title = &trimmed
		}
	}
	var description *string
	if input.Description != nil {
		normalized, msg := validate.Description(*input.Description)
		if msg != "" {
			fields["description"] = msg
		} else {
			description = normalized
		}
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	todo, err := h.Repo.Update(r.Context(), id, user.ID, title, description, input.Completed)
	if err != nil {
		RepoError(w, err, "todo not found")
		return
	}

	h.audit(r, user.ID, "update", todo.ID)
	writeJSON(w, http.StatusOK, todo)
}

// ==========================
// Toggle Todo
// ==========================
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	todo, err := h.Repo.Toggle(r.Context(), id, user.ID)
	if err != nil {
		RepoError(w, err, "todo not found")
		return
	}

	h.audit(r, user.ID, "toggle", todo.ID)
	writeJSON(w, http.StatusOK, todo)
}

// ==========================
// Delete Todo
// ==========================
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), id, user.ID); err != nil {
		RepoError(w, err, "todo not found")
		return
	}

	h.audit(r, user.ID, "delete", id)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("todo %d deleted", id),
	})
}
