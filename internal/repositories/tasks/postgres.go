// Package tasks is the task store adapter. Every statement that touches an
// existing row is scoped by both task id and owner id.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns every task owned by userID, ordered by id.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	query := `
		SELECT task_id, user_id, title, description, due_date, priority_level, status, creation_timestamp
		FROM tasks
		WHERE user_id = $1
		ORDER BY task_id
		`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Task
	for rows.Next() {
		var (
			item        models.Task
			description sql.NullString
			due         sql.NullTime
			priority    string
			status      string
		)
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &description, &due, &priority, &status, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		item.Description = description.String
		item.DueDate = fromNullDate(due)
		if item.Priority, err = models.ParsePriority(priority); err != nil {
			return nil, fmt.Errorf("db error: task %d: %v", item.ID, err)
		}
		if item.Status, err = models.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("db error: task %d: %v", item.ID, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Create inserts task and fills in the generated id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, due_date, priority_level, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING task_id, creation_timestamp
		`
	err := r.db.QueryRowContext(ctx, query,
		task.UserID, task.Title, nullString(task.Description), toNullDate(task.DueDate),
		string(task.Priority), string(task.Status),
	).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// Update rewrites all mutable fields of task. It returns common.ErrNotFound
// when no row with that id belongs to task.UserID.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, priority_level = $4, status = $5
		WHERE task_id = $6 AND user_id = $7
		`
	res, err := r.db.ExecContext(ctx, query,
		task.Title, nullString(task.Description), toNullDate(task.DueDate),
		string(task.Priority), string(task.Status), task.ID, task.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// Delete removes the task. It returns common.ErrNotFound when no row with
// that id belongs to userID.
func (r *PostgresRepository) Delete(ctx context.Context, userID, taskID int64) error {
	query := `DELETE FROM tasks WHERE task_id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// Owner returns the id of the user owning taskID.
func (r *PostgresRepository) Owner(ctx context.Context, taskID int64) (int64, error) {
	query := `SELECT user_id FROM tasks WHERE task_id = $1`

	var owner int64
	if err := r.db.QueryRowContext(ctx, query, taskID).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return owner, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: models.DateOf(*t), Valid: true}
}

func fromNullDate(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	d := models.DateOf(n.Time)
	return &d
}
