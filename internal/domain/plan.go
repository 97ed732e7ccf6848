package domain

import (
	"time"

	"github.com/google/uuid"
)

type Plan struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    string    `json:"owner_id"`
	TargetRole string    `json:"target_role"`
	CreatedAt  time.Time `json:"created_at"`
}

type Milestone struct {
	PlanID uuid.UUID `json:"plan_id"`
	Week   int       `json:"week"`
	Title  string    `json:"title"`
	Tasks  []string  `json:"tasks"`
	DueAt  time.Time `json:"due_at"`
}

// Reminder is one pending notification in the due-list swept by the
// reminders job.
type Reminder struct {
	ID      uuid.UUID  `json:"id"`
	UserID  string     `json:"user_id"`
	Email   string     `json:"email"`
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	DueAt   time.Time  `json:"due_at"`
	SentAt  *time.Time `json:"sent_at,omitempty"`
}
