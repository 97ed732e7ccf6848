package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"career-coach/internal/adapter/email"
	"career-coach/internal/adapter/repository"
	"career-coach/internal/domain"
	ai "career-coach/pkg/ai"
	"career-coach/pkg/pdftext"

	"github.com/google/uuid"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type countingLedger struct {
	inner QuotaLedger
	calls int
	err   error
}

func (l *countingLedger) CheckAndIncrement(ctx context.Context, userID, feature, period string, limit int) (domain.QuotaDecision, error) {
	l.calls++
	if l.err != nil {
		return domain.QuotaDecision{}, l.err
	}
	return l.inner.CheckAndIncrement(ctx, userID, feature, period, limit)
}

type fakeFetcher struct {
	calls []string
	data  []byte
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	f.calls = append(f.calls, path)
	return f.data, f.err
}

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract([]byte) (pdftext.Result, error) {
	if f.err != nil {
		return pdftext.Result{}, f.err
	}
	return pdftext.Result{Text: f.text, Strategy: "fake", Pages: 1}, nil
}

type fakeLLM struct {
	reply    string
	err      error
	requests []ai.Request
}

func (f *fakeLLM) Complete(_ context.Context, req ai.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

type fakeResults struct {
	saved []domain.TaskResult
	err   error
	rows  map[uuid.UUID]*domain.TaskResult
}

func (f *fakeResults) SaveResult(_ context.Context, res domain.TaskResult) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, res)
	return nil
}

func (f *fakeResults) GetResult(_ context.Context, id uuid.UUID) (*domain.TaskResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.rows[id]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

type fakePlans struct {
	owners     map[uuid.UUID]string
	milestones []domain.Milestone
	saveErr    error
}

func (f *fakePlans) PlanOwner(_ context.Context, id uuid.UUID) (string, error) {
	if owner, ok := f.owners[id]; ok {
		return owner, nil
	}
	return "", repository.ErrNotFound
}

func (f *fakePlans) SaveMilestones(_ context.Context, _ uuid.UUID, ms []domain.Milestone) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.milestones = append(f.milestones, ms...)
	return nil
}

type fakeReminders struct {
	scheduled []domain.Reminder
	due       []domain.Reminder
	released  []uuid.UUID
	claimErr  error
}

func (f *fakeReminders) Schedule(_ context.Context, rs []domain.Reminder) error {
	f.scheduled = append(f.scheduled, rs...)
	return nil
}

func (f *fakeReminders) ClaimDue(_ context.Context, _ time.Time, limit int) ([]domain.Reminder, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeReminders) Release(_ context.Context, rem domain.Reminder) error {
	f.released = append(f.released, rem.ID)
	return nil
}

type fakeJobs struct {
	byURL   map[string]domain.ExternalJob
	err     error
	lookups int
}

func (f *fakeJobs) Upsert(_ context.Context, j domain.ExternalJob) (domain.ExternalJob, error) {
	if f.err != nil {
		return j, f.err
	}
	if f.byURL == nil {
		f.byURL = map[string]domain.ExternalJob{}
	}
	if prev, ok := f.byURL[j.CanonicalURL]; ok {
		j.ID, j.FirstSeenAt = prev.ID, prev.FirstSeenAt
	}
	f.byURL[j.CanonicalURL] = j
	return j, nil
}

func (f *fakeJobs) Lookup(_ context.Context, canonical string) (*domain.ExternalJob, error) {
	f.lookups++
	if j, ok := f.byURL[canonical]; ok {
		return &j, nil
	}
	return nil, repository.ErrNotFound
}

// fakeInvitations mimics the conditional updates of the Postgres store.
type fakeInvitations struct {
	mu        sync.Mutex
	rows      map[string]*domain.Invitation
	createErr error
	// beforeAccept lets a test change the row between lookup and update.
	beforeAccept func(inv *domain.Invitation)
}

func newFakeInvitations() *fakeInvitations {
	return &fakeInvitations{rows: map[string]*domain.Invitation{}}
}

func (f *fakeInvitations) Create(_ context.Context, inv domain.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.rows {
		if r.Kind == inv.Kind && r.ResourceID == inv.ResourceID && r.AddressedTo(inv.TargetEmail) {
			return repository.ErrConflict
		}
	}
	f.rows[inv.TokenHash] = &inv
	return nil
}

func (f *fakeInvitations) GetByTokenHash(_ context.Context, hash string) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeInvitations) respond(inv domain.Invitation, status domain.InvitationStatus, who string, at time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.rows[inv.TokenHash]
	if r == nil || r.Status != domain.InvitationPending {
		return false
	}
	r.Status, r.RespondedBy, r.RespondedAt = status, who, &at
	return true
}

func (f *fakeInvitations) Accept(_ context.Context, inv domain.Invitation, granteeID string, at time.Time) (bool, error) {
	if f.beforeAccept != nil {
		f.mu.Lock()
		f.beforeAccept(f.rows[inv.TokenHash])
		f.mu.Unlock()
	}
	return f.respond(inv, domain.InvitationAccepted, granteeID, at), nil
}

func (f *fakeInvitations) Decline(_ context.Context, inv domain.Invitation, identityID string, at time.Time) (bool, error) {
	return f.respond(inv, domain.InvitationDeclined, identityID, at), nil
}

type fakeNotifier struct {
	sent []email.Message
}

func (f *fakeNotifier) Notify(msg email.Message) { f.sent = append(f.sent, msg) }

type fakeSender struct {
	fail map[string]bool
	sent []email.Message
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	if f.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}
