package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
)

const taskColumns = `id, title, description, responsible_user_id, deadline, category,
	urgency, status, requested_by, team_id, created_at, updated_at`

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	if !isUUID(id) {
		return nil, nil
	}
	task, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}
	return task, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, responsible_user_id, deadline, category,
		                    urgency, status, requested_by, team_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		task.ID, task.Title, task.Description, task.ResponsibleUserID, task.Deadline, task.Category,
		string(task.Urgency), string(task.Status), task.RequestedBy, task.TeamID,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update はタスクの全カラムを上書き更新する。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, responsible_user_id = $4, deadline = $5,
		     category = $6, urgency = $7, status = $8, updated_at = $9
		 WHERE id = $1`,
		task.ID, task.Title, task.Description, task.ResponsibleUserID, task.Deadline,
		task.Category, string(task.Urgency), string(task.Status), task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found: %s", task.ID)
	}
	return nil
}

// Delete は指定IDのタスクを削除する。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("task not found: %s", id)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// List はscopeの範囲のタスクを作成日時順に返す。
func (r *PostgresTaskRepo) List(ctx context.Context, scope access.Scope) ([]*model.Task, error) {
	if scope.Empty {
		return []*model.Task{}, nil
	}

	where, args := scopeFilter(scope, "team_id", 1)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks`+where+` ORDER BY created_at, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(s rowScanner) (*model.Task, error) {
	task := &model.Task{}
	var (
		description     sql.NullString
		deadline        sql.NullTime
		urgency, status string
	)
	if err := s.Scan(
		&task.ID, &task.Title, &description, &task.ResponsibleUserID, &deadline, &task.Category,
		&urgency, &status, &task.RequestedBy, &task.TeamID, &task.CreatedAt, &task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	if deadline.Valid {
		task.Deadline = &deadline.Time
	}
	task.Urgency = model.Urgency(urgency)
	task.Status = model.TaskStatus(status)
	return task, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
