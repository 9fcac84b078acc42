package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dverney/todo-api/internal/auth"
	"github.com/dverney/todo-api/internal/repo"
)

func authProtected(t *testing.T) (http.Handler, *auth.TokenService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	tokens := auth.NewTokenService([]byte("test-secret"), 30*time.Minute)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			t.Error("handler reached without a user in context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(user.Username))
	})
	handler := Authenticator(tokens, repo.NewUserRepo(db))(inner)
	return handler, tokens, mock, func() { db.Close() }
}

func TestAuthenticator_ValidToken(t *testing.T) {
	handler, tokens, mock, done := authProtected(t)
	defer done()

	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, email, hashed_password, is_active, created_at`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "is_active", "created_at"}).
			AddRow(1, "alice", "alice@example.com", "$2a$10$hash", true, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "alice" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthenticator_MissingHeader(t *testing.T) {
	handler, _, mock, done := authProtected(t)
	defer done()

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("expected WWW-Authenticate: Bearer header")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthenticator_NotBearerScheme(t *testing.T) {
	handler, _, mock, done := authProtected(t)
	defer done()

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	handler, tokens, mock, done := authProtected(t)
	defer done()

	token, err := tokens.IssueWithTTL("alice", time.Second)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}
	time.Sleep(1100 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// A token whose subject no longer resolves (deleted or deactivated account)
// is the same 401 as a bad token.
func TestAuthenticator_UnknownSubject(t *testing.T) {
	handler, tokens, mock, done := authProtected(t)
	defer done()

	token, err := tokens.Issue("ghost")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, email, hashed_password, is_active, created_at`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthenticator_InactiveUser(t *testing.T) {
	handler, tokens, mock, done := authProtected(t)
	defer done()

	token, err := tokens.Issue("bob")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// The row slipping past the repository's active filter still trips the
	// middleware's policy gate.
	mock.ExpectQuery(`SELECT id, username, email, hashed_password, is_active, created_at`).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "is_active", "created_at"}).
			AddRow(2, "bob", "bob@example.com", "$2a$10$hash", false, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
