package usecase

import (
	"context"
	"time"

	"career-coach/internal/adapter/email"
	"career-coach/internal/adapter/repository"
	"career-coach/internal/domain"
	ai "career-coach/pkg/ai"
	"career-coach/pkg/pdftext"

	"github.com/google/uuid"
)

type QuotaLedger interface {
	CheckAndIncrement(ctx context.Context, userID, feature, period string, limit int) (domain.QuotaDecision, error)
}

type ArtifactFetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

type TextExtractor interface {
	Extract(data []byte) (pdftext.Result, error)
}

type Completer interface {
	Complete(ctx context.Context, req ai.Request) (string, error)
}

type ResultStore interface {
	SaveResult(ctx context.Context, res domain.TaskResult) error
	GetResult(ctx context.Context, id uuid.UUID) (*domain.TaskResult, error)
}

type PlanStore interface {
	PlanOwner(ctx context.Context, planID uuid.UUID) (string, error)
	SaveMilestones(ctx context.Context, resultID uuid.UUID, ms []domain.Milestone) error
}

type ReminderStore interface {
	Schedule(ctx context.Context, rs []domain.Reminder) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error)
	Release(ctx context.Context, rem domain.Reminder) error
}

type JobStore interface {
	Upsert(ctx context.Context, j domain.ExternalJob) (domain.ExternalJob, error)
	Lookup(ctx context.Context, canonicalURL string) (*domain.ExternalJob, error)
}

type InvitationStore interface {
	Create(ctx context.Context, inv domain.Invitation) error
	GetByTokenHash(ctx context.Context, hash string) (*domain.Invitation, error)
	Accept(ctx context.Context, inv domain.Invitation, granteeID string, at time.Time) (bool, error)
	Decline(ctx context.Context, inv domain.Invitation, identityID string, at time.Time) (bool, error)
}

type UsageReader interface {
	UsageForUser(ctx context.Context, userID, period string, recent int) (*repository.UsageSummary, error)
}

// Notifier delivers mail without blocking the caller.
type Notifier interface {
	Notify(msg email.Message)
}

type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// Limits returns the per-period limit for a quota feature.
type Limits func(feature string) int

// Period is the calendar month a quota counter belongs to, in UTC.
func Period(t time.Time) string {
	return t.UTC().Format("2006-01")
}
