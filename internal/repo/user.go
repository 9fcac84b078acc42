package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dverney/todo-api/internal/auth"
	"github.com/dverney/todo-api/internal/models"
	"github.com/lib/pq"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================

// Create registers a new user. The password is hashed before anything is
// persisted; the plaintext never reaches the database. Returns
// *AlreadyExistsError when username or email is taken (username wins when
// both collide).
func (r *UserRepo) Create(ctx context.Context, username, email, password string) (*models.User, error) {
	var existingUsername, existingEmail string
	err := r.DB.QueryRowContext(ctx,
		`SELECT username, email FROM users WHERE username = $1 OR email = $2`,
		username, email,
	).Scan(&existingUsername, &existingEmail)
	switch {
	case err == nil:
		if existingUsername == username {
			return nil, &AlreadyExistsError{Field: "username"}
		}
		return nil, &AlreadyExistsError{Field: "email"}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, storageErr("user create check", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, storageErr("hash password", err)
	}

	user := &models.User{}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, email, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, is_active, created_at
	`, username, email, hash).
		Scan(&user.ID, &user.Username, &user.Email, &user.IsActive, &user.CreatedAt)
	if err != nil {
		// The pre-check races with concurrent registrations; the unique
		// constraints are the authority.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_email_key" {
				return nil, &AlreadyExistsError{Field: "email"}
			}
			return nil, &AlreadyExistsError{Field: "username"}
		}
		return nil, storageErr("user create", err)
	}

	return user, nil
}

// ==========================
// Get By Username
// ==========================

// GetByUsername returns an active user with the password hash loaded, for
// authentication and identity resolution. Inactive accounts resolve to
// ErrNotFound.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, hashed_password, is_active, created_at
		FROM users
		WHERE username = $1 AND is_active = TRUE
	`, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsActive, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("user get by username", err)
	}
	return user, nil
}

// ==========================
// Get By ID
// ==========================

// GetByID returns an active user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, is_active, created_at
		FROM users
		WHERE id = $1 AND is_active = TRUE
	`, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.IsActive, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("user get by id", err)
	}
	return user, nil
}

// ==========================
// Authenticate
// ==========================

// Authenticate verifies username and password. An unknown username and a
// wrong password both return ErrNotFound, so the response cannot be used to
// enumerate accounts.
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrNotFound
	}
	return user, nil
}
