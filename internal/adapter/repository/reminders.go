package repository

import (
	"context"
	"fmt"
	"time"

	"career-coach/internal/domain"
)

type RemindersRepo struct {
	db DBTX
}

func NewRemindersRepo(db DBTX) *RemindersRepo {
	return &RemindersRepo{db: db}
}

func (r *RemindersRepo) Schedule(ctx context.Context, rs []domain.Reminder) error {
	for _, rem := range rs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO reminders (id, user_id, email, subject, body, due_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			rem.ID, rem.UserID, rem.Email, rem.Subject, rem.Body, rem.DueAt); err != nil {
			return fmt.Errorf("insert reminder: %w", err)
		}
	}
	return nil
}

// ClaimDue marks up to limit due reminders as sent in one statement and
// returns them. Concurrent sweeps skip rows another sweep has locked.
func (r *RemindersRepo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`UPDATE reminders SET sent_at = $1
		WHERE id IN (
			SELECT id FROM reminders WHERE due_at <= $1 AND sent_at IS NULL
			ORDER BY due_at LIMIT $2 FOR UPDATE SKIP LOCKED
		)
		RETURNING id, user_id, email, subject, body, due_at`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim reminders: %w", err)
	}
	defer rows.Close()

	var out []domain.Reminder
	for rows.Next() {
		var rem domain.Reminder
		if err := rows.Scan(&rem.ID, &rem.UserID, &rem.Email, &rem.Subject, &rem.Body, &rem.DueAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		sent := now
		rem.SentAt = &sent
		out = append(out, rem)
	}
	return out, rows.Err()
}

// Release returns a claimed reminder to the due-list after a failed send.
func (r *RemindersRepo) Release(ctx context.Context, rem domain.Reminder) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE reminders SET sent_at = NULL WHERE id = $1`, rem.ID); err != nil {
		return fmt.Errorf("release reminder: %w", err)
	}
	return nil
}
