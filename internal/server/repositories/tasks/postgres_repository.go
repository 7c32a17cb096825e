package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

const taskColumns = `id, owner_id, title, description, due_date, completed, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var due sql.NullTime
	if err := row.Scan(&task.ID, &task.OwnerID, &task.Title, &task.Description, &due, &task.Completed, &task.CreatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		task.DueDate = &d
	}
	return task, nil
}

func nullTime(t *models.Task) sql.NullTime {
	if t.DueDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t.DueDate, Valid: true}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (owner_id, title, description, due_date, completed)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.OwnerID, task.Title, task.Description, nullTime(task), task.Completed).
		Scan(&task.ID, &task.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) GetByOwnerAndID(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE id = $1 AND owner_id = $2
		 `

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

// ListByOwner returns the owner's full task set, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update overwrites the mutable fields of a task the owner holds.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`UPDATE tasks SET title = $1, description = $2, due_date = $3, completed = $4
		 WHERE id = $5 AND owner_id = $6
		 RETURNING ` + taskColumns + `
		 `

	updated, err := scanTask(r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, nullTime(task), task.Completed, task.ID, task.OwnerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id int64) error {
	query :=
		`DELETE FROM tasks
		 WHERE id = $1 AND owner_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// Toggle flips the completion flag in a single statement.
func (r *PostgresRepository) Toggle(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	query :=
		`UPDATE tasks SET completed = NOT completed
		 WHERE id = $1 AND owner_id = $2
		 RETURNING ` + taskColumns + `
		 `

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}
