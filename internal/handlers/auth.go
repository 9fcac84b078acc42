package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dverney/todo-api/internal/auth"
	"github.com/dverney/todo-api/internal/metrics"
	"github.com/dverney/todo-api/internal/middleware"
	"github.com/dverney/todo-api/internal/repo"
	"github.com/dverney/todo-api/internal/validate"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users  *repo.UserRepo
	Tokens *auth.TokenService
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	username, msg := validate.Username(input.Username)
	if msg != "" {
		fields["username"] = msg
	}
	email, msg := validate.Email(input.Email)
	if msg != "" {
		fields["email"] = msg
	}
	if msg := validate.Password(input.Password); msg != "" {
		fields["password"] = msg
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Users.Create(r.Context(), username, email, input.Password)
	if err != nil {
		RepoError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// Unknown username and wrong password share one outcome so the endpoint
	// cannot be used to enumerate accounts.
	user, err := h.Users.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		metrics.RecordLogin("failure")
		w.Header().Set("WWW-Authenticate", "Bearer")
		JSONError(w, "incorrect username or password", http.StatusUnauthorized)
		return
	}

	token, err := h.Tokens.Issue(user.Username)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.RecordLogin("success")
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// ==========================
// Me (current user profile)
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
