package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"career-coach/internal/domain"

	"github.com/google/uuid"
)

type PlansRepo struct {
	db DBTX
}

func NewPlansRepo(db DBTX) *PlansRepo {
	return &PlansRepo{db: db}
}

func (r *PlansRepo) PlanOwner(ctx context.Context, planID uuid.UUID) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM career_plans WHERE id = $1`, planID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get plan owner: %w", err)
	}
	return owner, nil
}

// SaveMilestones appends the generated weeks of a plan. Earlier generations
// stay in place and are superseded by result_id.
func (r *PlansRepo) SaveMilestones(ctx context.Context, resultID uuid.UUID, ms []domain.Milestone) error {
	for _, m := range ms {
		tasks, err := json.Marshal(m.Tasks)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO plan_milestones (id, plan_id, result_id, week, title, tasks, due_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), m.PlanID, resultID, m.Week, m.Title, tasks, m.DueAt); err != nil {
			return fmt.Errorf("insert milestone week %d: %w", m.Week, err)
		}
	}
	return nil
}
