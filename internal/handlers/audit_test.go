package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dverney/todo-api/internal/middleware"
	"github.com/dverney/todo-api/internal/repo"
)

func TestAuditHandler_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, action, resource_type, resource_id, COALESCE\(details,''\), created_at FROM audit_log`).
		WithArgs(7, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "resource_type", "resource_id", "details", "created_at"}).
			AddRow(2, 7, "delete", "todo", 5, "", time.Now()).
			AddRow(1, 7, "create", "todo", 5, "", time.Now()))

	h := &AuditHandler{Repo: repo.NewAuditRepo(db)}
	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), testUser))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var entries []map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0]["action"] != "delete" {
		t.Errorf("unexpected entries: %v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuditHandler_List_EmptyIsArray(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, action, resource_type, resource_id, COALESCE\(details,''\), created_at FROM audit_log`).
		WithArgs(7, 25, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "resource_type", "resource_id", "details", "created_at"}))

	h := &AuditHandler{Repo: repo.NewAuditRepo(db)}
	req := httptest.NewRequest(http.MethodGet, "/audit?limit=25", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), testUser))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
