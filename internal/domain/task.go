package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskResumeAnalysis TaskType = "resume_analysis"
	TaskJobMatch       TaskType = "job_match"
	TaskMilestones     TaskType = "milestones"
	TaskJobSearch      TaskType = "job_search"
	TaskCoverLetter    TaskType = "cover_letter"
)

// QuotaDecision is the outcome of one check-and-increment on the ledger.
type QuotaDecision struct {
	Allowed bool
	Count   int
	Limit   int
	Feature string
	Period  string
}

// Remaining is computed from the count returned by the ledger, never from a
// second read.
func (d QuotaDecision) Remaining() int {
	if r := d.Limit - d.Count; r > 0 {
		return r
	}
	return 0
}

// TaskResult is one append-only row of validated LLM output.
type TaskResult struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	TaskType  TaskType        `json:"task_type"`
	Input     json.RawMessage `json:"input"`
	Output    json.RawMessage `json:"output"`
	CreatedAt time.Time       `json:"created_at"`
}
