package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT username, email FROM users`).
		WithArgs("alice", "alice@example.com").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(`INSERT INTO users \(username, email, hashed_password\)`).
		WithArgs("alice", "alice@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "is_active", "created_at"}).
			AddRow(1, "alice", "alice@example.com", true, time.Now()))

	repo := NewUserRepo(db)
	user, err := repo.Create(context.Background(), "alice", "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || user.Email != "alice@example.com" || !user.IsActive {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.PasswordHash != "" {
		t.Errorf("password hash must not be populated on create response")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Create_DuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT username, email FROM users`).
		WithArgs("alice", "other@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).
			AddRow("alice", "alice@example.com"))

	repo := NewUserRepo(db)
	_, err = repo.Create(context.Background(), "alice", "other@example.com", "password123")

	var exists *AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("expected AlreadyExistsError, got: %v", err)
	}
	if exists.Field != "username" {
		t.Errorf("expected username collision, got: %q", exists.Field)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT username, email FROM users`).
		WithArgs("bob", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).
			AddRow("alice", "alice@example.com"))

	repo := NewUserRepo(db)
	_, err = repo.Create(context.Background(), "bob", "alice@example.com", "password123")

	var exists *AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("expected AlreadyExistsError, got: %v", err)
	}
	if exists.Field != "email" {
		t.Errorf("expected email collision, got: %q", exists.Field)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, email, hashed_password, is_active, created_at`).
		WithArgs("charlie").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "is_active", "created_at"}).
			AddRow(2, "charlie", "charlie@example.com", "$2a$10$hash", true, time.Now()))

	repo := NewUserRepo(db)
	user, err := repo.GetByUsername(context.Background(), "charlie")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if user.ID != 2 || user.Username != "charlie" || user.PasswordHash == "" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, email, hashed_password, is_active, created_at`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	_, err = repo.GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, email, is_active, created_at`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	_, err = repo.GetByID(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Authenticate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, email, hashed_password, is_active, created_at`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "is_active", "created_at"}).
			AddRow(1, "alice", "alice@example.com", string(hash), true, time.Now()))

	repo := NewUserRepo(db)
	user, err := repo.Authenticate(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// Wrong password and unknown username must be the same outcome.
func TestUserRepo_Authenticate_SameOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, email, hashed_password, is_active, created_at`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "is_active", "created_at"}).
			AddRow(1, "alice", "alice@example.com", string(hash), true, time.Now()))

	repo := NewUserRepo(db)
	_, wrongPassErr := repo.Authenticate(context.Background(), "alice", "wrong-password")

	mock.ExpectQuery(`SELECT id, username, email, hashed_password, is_active, created_at`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, unknownErr := repo.Authenticate(context.Background(), "nobody", "password123")

	if !errors.Is(wrongPassErr, ErrNotFound) || !errors.Is(unknownErr, ErrNotFound) {
		t.Errorf("both failures must be ErrNotFound: wrongPass=%v unknown=%v", wrongPassErr, unknownErr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
