package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dverney/todo-api/internal/models"
	"github.com/dverney/todo-api/internal/validate"
)

const todoColumns = "id, title, description, completed, created_at, user_id"

// ========================
// REPOSITORY STRUCT
// ========================

// TodoRepo performs ownership-scoped todo persistence. Every query filters by
// user_id, so a todo owned by another user behaves exactly like a missing row.
type TodoRepo struct {
	DB *sql.DB
}

func NewTodoRepo(db *sql.DB) *TodoRepo {
	return &TodoRepo{DB: db}
}

// TodoPage is the result of a paginated List call. TotalCount reflects the
// filtered set, not the whole table.
type TodoPage struct {
	Todos      []models.Todo `json:"todos"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// TodoStats are aggregate counts for one owner.
type TodoStats struct {
	TotalTodos     int     `json:"total_todos"`
	CompletedTodos int     `json:"completed_todos"`
	PendingTodos   int     `json:"pending_todos"`
	CompletionRate float64 `json:"completion_rate"`
}

// ========================
// LIST
// ========================

// List returns ownerID's todos newest first. completed narrows to an exact
// match when non-nil; search does a case-insensitive substring match on title
// or description when non-nil. page is 1-indexed. Optional clauses are
// assembled with positional parameters only; user input is never interpolated
// into the SQL text.
func (r *TodoRepo) List(ctx context.Context, ownerID int, completed *bool, search *string, page, pageSize int) (*TodoPage, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidInput
	}

	where := []string{"user_id = $1"}
	args := []interface{}{ownerID}

	if completed != nil {
		args = append(args, *completed)
		where = append(where, fmt.Sprintf("completed = $%d", len(args)))
	}
	if search != nil {
		args = append(args, "%"+*search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var totalCount int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM todos WHERE "+whereClause, args...,
	).Scan(&totalCount)
	if err != nil {
		return nil, storageErr("todo count", err)
	}

	totalPages := (totalCount + pageSize - 1) / pageSize
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(
		"SELECT %s FROM todos WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		todoColumns, whereClause, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("todo list", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UserID); err != nil {
			return nil, storageErr("todo list scan", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("todo list rows", err)
	}

	return &TodoPage{
		Todos:      todos,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ========================
// GET
// ========================

// Get returns the todo matching both id and owner, or ErrNotFound.
func (r *TodoRepo) Get(ctx context.Context, id, ownerID int) (*models.Todo, error) {
	t := &models.Todo{}
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id = $1 AND user_id = $2",
		id, ownerID,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("todo get", err)
	}
	return t, nil
}

// ========================
// CREATE
// ========================

// Create inserts a todo for ownerID. Handlers validate first; the checks here
// are a last line of defense, and the validators' normalized values are what
// gets persisted so a caller skipping the handler cannot store an untrimmed
// title or a whitespace-only description.
func (r *TodoRepo) Create(ctx context.Context, ownerID int, title string, description *string) (*models.Todo, error) {
	title, msg := validate.Title(title)
	if msg != "" {
		return nil, ErrInvalidInput
	}
	if description != nil {
		normalized, msg := validate.Description(*description)
		if msg != "" {
			return nil, ErrInvalidInput
		}
		description = normalized
	}

	t := &models.Todo{}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO todos (title, description, user_id)
		VALUES ($1, $2, $3)
		RETURNING `+todoColumns,
		title, description, ownerID,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UserID)
	if err != nil {
		return nil, storageErr("todo create", err)
	}
	return t, nil
}

// ========================
// REPLACE (PUT)
// ========================

// Replace overwrites all mutable fields of the todo matching id and owner.
// The stored title is the validator's trimmed form.
func (r *TodoRepo) Replace(ctx context.Context, id, ownerID int, title string, description *string, completed bool) (*models.Todo, error) {
	title, msg := validate.Title(title)
	if msg != "" {
		return nil, ErrInvalidInput
	}

	t := &models.Todo{}
	err := r.DB.QueryRowContext(ctx, `
		UPDATE todos
		SET title = $1, description = $2, completed = $3
		WHERE id = $4 AND user_id = $5
		RETURNING `+todoColumns,
		title, description, completed, id, ownerID,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("todo replace", err)
	}
	return t, nil
}

// ========================
// UPDATE (PATCH)
// ========================

// Update changes only the fields that are non-nil. When every field is nil
// the current row is returned without issuing a write.
func (r *TodoRepo) Update(ctx context.Context, id, ownerID int, title *string, description *string, completed *bool) (*models.Todo, error) {
	set := []string{}
	args := []interface{}{}

	if title != nil {
		trimmed, msg := validate.Title(*title)
		if msg != "" {
			return nil, ErrInvalidInput
		}
		args = append(args, trimmed)
		set = append(set, fmt.Sprintf("title = $%d", len(args)))
	}
	if description != nil {
		args = append(args, *description)
		set = append(set, fmt.Sprintf("description = $%d", len(args)))
	}
	if completed != nil {
		args = append(args, *completed)
		set = append(set, fmt.Sprintf("completed = $%d", len(args)))
	}

	if len(set) == 0 {
		return r.Get(ctx, id, ownerID)
	}

	query := fmt.Sprintf(
		"UPDATE todos SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args)+1, len(args)+2, todoColumns,
	)
	args = append(args, id, ownerID)

	t := &models.Todo{}
	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("todo update", err)
	}
	return t, nil
}

// ========================
// TOGGLE
// ========================

// Toggle flips the completed flag. Read-then-write: two concurrent toggles on
// the same row are last-write-wins.
func (r *TodoRepo) Toggle(ctx context.Context, id, ownerID int) (*models.Todo, error) {
	current, err := r.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	flipped := !current.Completed
	return r.Update(ctx, id, ownerID, nil, nil, &flipped)
}

// ========================
// DELETE
// ========================

// Delete physically removes the todo matching id and owner.
func (r *TodoRepo) Delete(ctx context.Context, id, ownerID int) error {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return storageErr("todo delete", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("todo delete result", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ========================
// STATS
// ========================

// Stats returns aggregate counts for ownerID. CompletionRate is a percentage
// rounded to two decimal places, and 0 when the owner has no todos.
func (r *TodoRepo) Stats(ctx context.Context, ownerID int) (*TodoStats, error) {
	s := &TodoStats{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS total_todos,
			COUNT(CASE WHEN completed = TRUE THEN 1 END) AS completed_todos,
			COUNT(CASE WHEN completed = FALSE THEN 1 END) AS pending_todos
		FROM todos
		WHERE user_id = $1
	`, ownerID).Scan(&s.TotalTodos, &s.CompletedTodos, &s.PendingTodos)
	if err != nil {
		return nil, storageErr("todo stats", err)
	}

	if s.TotalTodos > 0 {
		rate := float64(s.CompletedTodos) / float64(s.TotalTodos) * 100
		s.CompletionRate = math.Round(rate*100) / 100
	}
	return s, nil
}
