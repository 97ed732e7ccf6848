package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"career-coach/internal/domain"

	"github.com/google/uuid"
)

// ResultsRepo appends task_results rows. Rows are never updated.
type ResultsRepo struct {
	db DBTX
}

func NewResultsRepo(db DBTX) *ResultsRepo {
	return &ResultsRepo{db: db}
}

func (r *ResultsRepo) SaveResult(ctx context.Context, res domain.TaskResult) error {
	input := []byte(res.Input)
	if len(input) == 0 {
		input = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO task_results (id, user_id, task_type, input, output, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID, res.UserID, string(res.TaskType), input, []byte(res.Output), res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert task result: %w", err)
	}
	return nil
}

func (r *ResultsRepo) GetResult(ctx context.Context, id uuid.UUID) (*domain.TaskResult, error) {
	var (
		res           domain.TaskResult
		taskType      string
		input, output []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, task_type, input, output, created_at FROM task_results WHERE id = $1`, id).
		Scan(&res.ID, &res.UserID, &taskType, &input, &output, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task result: %w", err)
	}
	res.TaskType = domain.TaskType(taskType)
	res.Input = input
	res.Output = output
	return &res, nil
}
