package scheduler

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/dverney/todo-api/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Run starts a background cron that refreshes the database-backed gauges
// (todo_items, registered_users) once per minute. The returned cron can be
// stopped by the caller on shutdown.
func Run(db *sql.DB) *cron.Cron {
	c := cron.New()

	refresh := func() {
		if err := Refresh(context.Background(), db); err != nil {
			slog.Error("scheduler: refresh gauges", "error", err)
		}
	}

	// Initial refresh so the gauges are populated before the first tick.
	refresh()

	if _, err := c.AddFunc("@every 1m", refresh); err != nil {
		slog.Error("scheduler: add refresh job", "error", err)
		return c
	}
	c.Start()
	return c
}

// Refresh reads the current todo and active-user counts and publishes them as
// prometheus gauges.
func Refresh(ctx context.Context, db *sql.DB) error {
	var todos int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&todos); err != nil {
		return err
	}

	var users int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_active = TRUE`).Scan(&users); err != nil {
		return err
	}

	metrics.TodoItems.Set(float64(todos))
	metrics.RegisteredUsers.Set(float64(users))
	return nil
}
